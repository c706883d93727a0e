/*
Package ledger owns point wallets and their append-only transaction
history.

Every balance mutation runs through one atomic unit: a ledger row is
created pending, the balance is shifted by a guarded conditional update
(debits require balance >= amount at apply time), and the row is flipped
to success with before/after snapshots. If any step fails the unit rolls
back and no partial state is visible.

Usage:

	svc := ledger.NewService(repo, cache, &ledger.NoopMetricsCollector{})

	// Provision a wallet (explicit; debits never auto-provision)
	wallet, err := svc.CreateWallet(ctx, userID)

	// Spend points
	res, err := svc.Debit(ctx, userID, 10, reference, "undo last skip")

	// Top-ups and refunds
	res, err = svc.Credit(ctx, userID, 100, reference, "wallet top up")

Engines that need to fold a debit into their own transactional unit use
DebitInTx with the *gorm.DB of that transaction; the same guarded update
applies, so a charge-time shortfall aborts the caller's whole unit.

Error handling:

  - errors.ErrWalletNotFound: no wallet row for the user
  - errors.ErrInsufficientBalance: balance below the debit amount,
    carrying balance/required details for the UI
  - errors.ErrInvalidAmount: non-positive amount
  - errors.ErrDuplicateReference: reference reuse
*/
package ledger
