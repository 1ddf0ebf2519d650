package services

import (
	"testing"
	"time"

	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/testutil"
)

func TestCreateTransfer(t *testing.T) {
	t.Run("moves_amount_between_accounts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransferService(db, NewAccountService(db, nil))
		user := testutil.CreateTestUser(t, db)
		from := testutil.CreateTestAccountWithBalance(t, db, user.ID, 10000)
		to := testutil.CreateTestAccountWithBalance(t, db, user.ID, 1000)

		transfer, err := svc.CreateTransfer(user.ID, TransferInput{
			FromAccountID: from.ID,
			ToAccountID:   to.ID,
			Amount:        4000,
		})
		testutil.AssertNoError(t, err)
		if transfer.ID == "" {
			t.Fatal("expected non-empty transfer ID")
		}

		var src, dst models.Account
		testutil.AssertNoError(t, db.First(&src, "id = ?", from.ID).Error)
		testutil.AssertNoError(t, db.First(&dst, "id = ?", to.ID).Error)
		testutil.AssertBalance(t, src.Amount, 6000)
		testutil.AssertBalance(t, dst.Amount, 5000)
	})

	t.Run("insufficient_funds", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransferService(db, NewAccountService(db, nil))
		user := testutil.CreateTestUser(t, db)
		from := testutil.CreateTestAccountWithBalance(t, db, user.ID, 10000)
		to := testutil.CreateTestAccountWithBalance(t, db, user.ID, 1000)

		_, err := svc.CreateTransfer(user.ID, TransferInput{
			FromAccountID: from.ID,
			ToAccountID:   to.ID,
			Amount:        20000,
		})
		testutil.AssertAppError(t, err, "INSUFFICIENT_FUNDS")

		var src, dst models.Account
		testutil.AssertNoError(t, db.First(&src, "id = ?", from.ID).Error)
		testutil.AssertNoError(t, db.First(&dst, "id = ?", to.ID).Error)
		testutil.AssertBalance(t, src.Amount, 10000)
		testutil.AssertBalance(t, dst.Amount, 1000)
	})

	t.Run("same_account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransferService(db, NewAccountService(db, nil))
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccountWithBalance(t, db, user.ID, 10000)

		_, err := svc.CreateTransfer(user.ID, TransferInput{
			FromAccountID: account.ID,
			ToAccountID:   account.ID,
			Amount:        100,
		})
		testutil.AssertAppError(t, err, "INVALID_TRANSFER")
	})

	t.Run("other_users_account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransferService(db, NewAccountService(db, nil))
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		mine := testutil.CreateTestAccountWithBalance(t, db, user.ID, 10000)
		theirs := testutil.CreateTestAccountWithBalance(t, db, other.ID, 10000)

		_, err := svc.CreateTransfer(user.ID, TransferInput{
			FromAccountID: mine.ID,
			ToAccountID:   theirs.ID,
			Amount:        100,
		})
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})

	t.Run("missing_source_account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransferService(db, NewAccountService(db, nil))
		user := testutil.CreateTestUser(t, db)
		to := testutil.CreateTestAccount(t, db, user.ID)

		_, err := svc.CreateTransfer(user.ID, TransferInput{
			FromAccountID: "00000000-0000-0000-0000-000000000000",
			ToAccountID:   to.ID,
			Amount:        100,
		})
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	})

	t.Run("zero_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransferService(db, NewAccountService(db, nil))
		user := testutil.CreateTestUser(t, db)
		from := testutil.CreateTestAccount(t, db, user.ID)
		to := testutil.CreateTestAccount(t, db, user.ID)

		_, err := svc.CreateTransfer(user.ID, TransferInput{
			FromAccountID: from.ID,
			ToAccountID:   to.ID,
			Amount:        0,
		})
		testutil.AssertAppError(t, err, "VALIDATION_FAILED")
	})
}

func TestGetUserTransfers(t *testing.T) {
	t.Run("account_filter_matches_either_leg", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransferService(db, NewAccountService(db, nil))
		user := testutil.CreateTestUser(t, db)
		a := testutil.CreateTestAccountWithBalance(t, db, user.ID, 100000)
		b := testutil.CreateTestAccountWithBalance(t, db, user.ID, 100000)
		c := testutil.CreateTestAccountWithBalance(t, db, user.ID, 100000)

		_, err := svc.CreateTransfer(user.ID, TransferInput{FromAccountID: a.ID, ToAccountID: b.ID, Amount: 100})
		testutil.AssertNoError(t, err)
		_, err = svc.CreateTransfer(user.ID, TransferInput{FromAccountID: b.ID, ToAccountID: c.ID, Amount: 200})
		testutil.AssertNoError(t, err)
		_, err = svc.CreateTransfer(user.ID, TransferInput{FromAccountID: a.ID, ToAccountID: c.ID, Amount: 300})
		testutil.AssertNoError(t, err)

		result, err := svc.GetUserTransfers(user.ID, TransferFilter{AccountID: &b.ID}, pagination.PageRequest{})
		testutil.AssertNoError(t, err)

		if len(result.Data) != 2 {
			t.Errorf("expected 2 transfers touching account b, got %d", len(result.Data))
		}
	})

	t.Run("date_range_filter", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransferService(db, NewAccountService(db, nil))
		user := testutil.CreateTestUser(t, db)
		a := testutil.CreateTestAccountWithBalance(t, db, user.ID, 100000)
		b := testutil.CreateTestAccountWithBalance(t, db, user.ID, 100000)
		now := time.Now()

		_, err := svc.CreateTransfer(user.ID, TransferInput{
			FromAccountID: a.ID, ToAccountID: b.ID, Amount: 100, Date: now.AddDate(0, -2, 0),
		})
		testutil.AssertNoError(t, err)
		_, err = svc.CreateTransfer(user.ID, TransferInput{
			FromAccountID: a.ID, ToAccountID: b.ID, Amount: 200, Date: now,
		})
		testutil.AssertNoError(t, err)

		from := now.AddDate(0, -1, 0)
		result, err := svc.GetUserTransfers(user.ID, TransferFilter{StartDate: &from}, pagination.PageRequest{})
		testutil.AssertNoError(t, err)

		if len(result.Data) != 1 {
			t.Fatalf("expected 1 transfer, got %d", len(result.Data))
		}
		testutil.AssertBalance(t, result.Data[0].Amount, 200)
	})
}

func TestDeleteTransfer(t *testing.T) {
	t.Run("restores_both_balances", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransferService(db, NewAccountService(db, nil))
		user := testutil.CreateTestUser(t, db)
		from := testutil.CreateTestAccountWithBalance(t, db, user.ID, 10000)
		to := testutil.CreateTestAccountWithBalance(t, db, user.ID, 1000)

		transfer, err := svc.CreateTransfer(user.ID, TransferInput{
			FromAccountID: from.ID, ToAccountID: to.ID, Amount: 4000,
		})
		testutil.AssertNoError(t, err)

		err = svc.DeleteTransfer(Requester{UserID: user.ID, Role: models.RoleUser}, transfer.ID)
		testutil.AssertNoError(t, err)

		var src, dst models.Account
		testutil.AssertNoError(t, db.First(&src, "id = ?", from.ID).Error)
		testutil.AssertNoError(t, db.First(&dst, "id = ?", to.ID).Error)
		testutil.AssertBalance(t, src.Amount, 10000)
		testutil.AssertBalance(t, dst.Amount, 1000)
	})

	t.Run("other_user_forbidden", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransferService(db, NewAccountService(db, nil))
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		from := testutil.CreateTestAccountWithBalance(t, db, user.ID, 10000)
		to := testutil.CreateTestAccountWithBalance(t, db, user.ID, 1000)

		transfer, err := svc.CreateTransfer(user.ID, TransferInput{
			FromAccountID: from.ID, ToAccountID: to.ID, Amount: 100,
		})
		testutil.AssertNoError(t, err)

		err = svc.DeleteTransfer(Requester{UserID: other.ID, Role: models.RoleUser}, transfer.ID)
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransferService(db, NewAccountService(db, nil))
		user := testutil.CreateTestUser(t, db)

		err := svc.DeleteTransfer(Requester{UserID: user.ID, Role: models.RoleUser},
			"00000000-0000-0000-0000-000000000000")
		testutil.AssertAppError(t, err, "TRANSFER_NOT_FOUND")
	})
}
