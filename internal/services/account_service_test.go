package services

import (
	"context"
	"testing"

	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/testutil"
)

// stubRates is a RateSource returning a fixed rate or error.
type stubRates struct {
	rate float64
	err  error
}

func (s *stubRates) GetRate(_ context.Context, from, to string) (float64, error) {
	if s.err != nil {
		return 0, s.err
	}
	if from == to {
		return 1.0, nil
	}
	return s.rate, nil
}

func TestCreateAccount(t *testing.T) {
	t.Run("creates_account_with_initial_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db, nil)
		user := testutil.CreateTestUser(t, db)

		account, err := svc.CreateAccount(user.ID, models.AccountGroupBank, "Checking", "", "USD", 5000)
		testutil.AssertNoError(t, err)

		if account.ID == "" {
			t.Fatal("expected non-empty account ID")
		}
		testutil.AssertBalance(t, account.Amount, 5000)
		if account.BaseCurrency != "USD" {
			t.Errorf("expected base currency USD, got %s", account.BaseCurrency)
		}
	})

	t.Run("defaults_base_currency_to_user_preference", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db, nil)
		user := testutil.CreateTestUser(t, db)
		testutil.AssertNoError(t, db.Model(user).Update("currency", "EUR").Error)

		account, err := svc.CreateAccount(user.ID, models.AccountGroupCash, "Wallet", "", "", 0)
		testutil.AssertNoError(t, err)

		if account.BaseCurrency != "EUR" {
			t.Errorf("expected base currency EUR, got %s", account.BaseCurrency)
		}
	})

	t.Run("empty_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db, nil)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateAccount(user.ID, models.AccountGroupCash, "", "", "USD", 0)
		testutil.AssertAppError(t, err, "VALIDATION_FAILED")
	})
}

func TestGetAccountByID(t *testing.T) {
	t.Run("owner_can_read", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db, nil)
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccountWithBalance(t, db, user.ID, 1000)

		got, err := svc.GetAccountByID(Requester{UserID: user.ID, Role: models.RoleUser}, account.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, got.Amount, 1000)
	})

	t.Run("other_user_forbidden", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db, nil)
		owner := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, owner.ID)

		_, err := svc.GetAccountByID(Requester{UserID: other.ID, Role: models.RoleUser}, account.ID)
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})

	t.Run("admin_can_read_any", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db, nil)
		owner := testutil.CreateTestUser(t, db)
		admin := testutil.CreateTestAdmin(t, db)
		account := testutil.CreateTestAccount(t, db, owner.ID)

		_, err := svc.GetAccountByID(Requester{UserID: admin.ID, Role: models.RoleAdmin}, account.ID)
		testutil.AssertNoError(t, err)
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db, nil)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.GetAccountByID(Requester{UserID: user.ID, Role: models.RoleUser}, "00000000-0000-0000-0000-000000000000")
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	})
}

func TestAdjustBalance(t *testing.T) {
	t.Run("applies_signed_delta", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db, nil)
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccountWithBalance(t, db, user.ID, 1000)

		testutil.AssertNoError(t, svc.AdjustBalance(db, account.ID, 500))
		testutil.AssertNoError(t, svc.AdjustBalance(db, account.ID, -200))

		var updated models.Account
		testutil.AssertNoError(t, db.First(&updated, "id = ?", account.ID).Error)
		testutil.AssertBalance(t, updated.Amount, 1300)
	})

	t.Run("missing_account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db, nil)

		err := svc.AdjustBalance(db, "00000000-0000-0000-0000-000000000000", 100)
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	})
}

func TestConvertAll(t *testing.T) {
	t.Run("converts_and_rounds_every_account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db, nil)
		user := testutil.CreateTestUser(t, db)
		a := testutil.CreateTestAccountWithBalance(t, db, user.ID, 10000)
		b := testutil.CreateTestAccountWithBalance(t, db, user.ID, 333)

		testutil.AssertNoError(t, svc.ConvertAll(db, user.ID, 0.5, "USD"))

		var updatedA, updatedB models.Account
		testutil.AssertNoError(t, db.First(&updatedA, "id = ?", a.ID).Error)
		testutil.AssertNoError(t, db.First(&updatedB, "id = ?", b.ID).Error)
		testutil.AssertBalance(t, updatedA.Amount, 5000)
		testutil.AssertBalance(t, updatedB.Amount, 167)
		if updatedA.BaseCurrency != "USD" || updatedB.BaseCurrency != "USD" {
			t.Errorf("expected both accounts in USD, got %s and %s", updatedA.BaseCurrency, updatedB.BaseCurrency)
		}
	})

	t.Run("leaves_other_users_untouched", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db, nil)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		testutil.CreateTestAccountWithBalance(t, db, user.ID, 1000)
		theirs := testutil.CreateTestAccountWithBalance(t, db, other.ID, 1000)

		testutil.AssertNoError(t, svc.ConvertAll(db, user.ID, 2.0, "USD"))

		var untouched models.Account
		testutil.AssertNoError(t, db.First(&untouched, "id = ?", theirs.ID).Error)
		testutil.AssertBalance(t, untouched.Amount, 1000)
	})
}

func TestUpdateAccount(t *testing.T) {
	t.Run("updates_descriptive_fields_only", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db, nil)
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccountWithBalance(t, db, user.ID, 7500)

		name := "Renamed"
		group := models.AccountGroupSavings
		_, err := svc.UpdateAccount(Requester{UserID: user.ID, Role: models.RoleUser}, account.ID,
			AccountUpdateFields{Name: &name, Group: &group})
		testutil.AssertNoError(t, err)

		var updated models.Account
		testutil.AssertNoError(t, db.First(&updated, "id = ?", account.ID).Error)
		if updated.Name != "Renamed" {
			t.Errorf("expected name Renamed, got %s", updated.Name)
		}
		if updated.Group != models.AccountGroupSavings {
			t.Errorf("expected group savings, got %s", updated.Group)
		}
		testutil.AssertBalance(t, updated.Amount, 7500)
	})
}

func TestGetUserAccounts(t *testing.T) {
	t.Run("attaches_display_conversion", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db, &stubRates{rate: 2.0})
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestAccountWithBalance(t, db, user.ID, 1000)

		result, err := svc.GetUserAccounts(context.Background(), user.ID, "USD", pagination.PageRequest{})
		testutil.AssertNoError(t, err)

		if len(result.Data) != 1 {
			t.Fatalf("expected 1 account, got %d", len(result.Data))
		}
		account := result.Data[0]
		if account.ConvertedAmount == nil {
			t.Fatal("expected converted amount to be attached")
		}
		testutil.AssertBalance(t, *account.ConvertedAmount, 2000)
		if account.DisplayCurrency != "USD" {
			t.Errorf("expected display currency USD, got %s", account.DisplayCurrency)
		}
	})

	t.Run("defaults_to_preferred_currency", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db, &stubRates{rate: 2.0})
		user := testutil.CreateTestUser(t, db)
		testutil.AssertNoError(t, db.Model(user).Update("currency", "USD").Error)
		testutil.CreateTestAccountWithBalance(t, db, user.ID, 1000)

		result, err := svc.GetUserAccounts(context.Background(), user.ID, "", pagination.PageRequest{})
		testutil.AssertNoError(t, err)

		account := result.Data[0]
		if account.ConvertedAmount == nil {
			t.Fatal("expected conversion to the user's preferred currency")
		}
		testutil.AssertBalance(t, *account.ConvertedAmount, 2000)
		if account.DisplayCurrency != "USD" {
			t.Errorf("expected display currency USD, got %s", account.DisplayCurrency)
		}
	})

	t.Run("explicit_currency_overrides_preference", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db, &stubRates{rate: 3.0})
		user := testutil.CreateTestUser(t, db)
		testutil.AssertNoError(t, db.Model(user).Update("currency", "USD").Error)
		testutil.CreateTestAccountWithBalance(t, db, user.ID, 1000)

		result, err := svc.GetUserAccounts(context.Background(), user.ID, "EUR", pagination.PageRequest{})
		testutil.AssertNoError(t, err)

		account := result.Data[0]
		if account.DisplayCurrency != "EUR" {
			t.Errorf("expected display currency EUR, got %s", account.DisplayCurrency)
		}
	})

	t.Run("rate_failure_skips_conversion", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db, &stubRates{err: context.DeadlineExceeded})
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestAccountWithBalance(t, db, user.ID, 1000)

		result, err := svc.GetUserAccounts(context.Background(), user.ID, "USD", pagination.PageRequest{})
		testutil.AssertNoError(t, err)

		if result.Data[0].ConvertedAmount != nil {
			t.Error("expected no converted amount on rate failure")
		}
	})

	t.Run("paginates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db, nil)
		user := testutil.CreateTestUser(t, db)
		for i := 0; i < 5; i++ {
			testutil.CreateTestAccount(t, db, user.ID)
		}

		result, err := svc.GetUserAccounts(context.Background(), user.ID, "", pagination.PageRequest{Page: 1, PageSize: 2})
		testutil.AssertNoError(t, err)

		if len(result.Data) != 2 {
			t.Errorf("expected 2 accounts on page, got %d", len(result.Data))
		}
		if result.TotalItems != 5 {
			t.Errorf("expected 5 total items, got %d", result.TotalItems)
		}
		if result.TotalPages != 3 {
			t.Errorf("expected 3 total pages, got %d", result.TotalPages)
		}
	})
}
