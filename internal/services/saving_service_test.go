package services

import (
	"testing"
	"time"

	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/testutil"
)

func TestCreateSaving(t *testing.T) {
	t.Run("starts_in_progress", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSavingService(db)
		user := testutil.CreateTestUser(t, db)

		saving, err := svc.CreateSaving(user.ID, SavingInput{
			Name:       "Vacation",
			Amount:     100000,
			TargetDate: time.Now().AddDate(0, 6, 0),
		})
		testutil.AssertNoError(t, err)
		if saving.Status != models.SavingStatusInProgress {
			t.Errorf("expected In Progress, got %s", saving.Status)
		}
	})

	t.Run("funded_goal_starts_completed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSavingService(db)
		user := testutil.CreateTestUser(t, db)

		saving, err := svc.CreateSaving(user.ID, SavingInput{
			Name:          "Emergency fund",
			Amount:        50000,
			CurrentAmount: 50000,
			TargetDate:    time.Now().AddDate(1, 0, 0),
		})
		testutil.AssertNoError(t, err)
		if saving.Status != models.SavingStatusCompleted {
			t.Errorf("expected Completed, got %s", saving.Status)
		}
	})

	t.Run("negative_current_amount_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSavingService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateSaving(user.ID, SavingInput{
			Name:          "Bad",
			Amount:        1000,
			CurrentAmount: -1,
			TargetDate:    time.Now().AddDate(0, 1, 0),
		})
		testutil.AssertAppError(t, err, "VALIDATION_FAILED")
	})
}

func TestGetUserSavings(t *testing.T) {
	t.Run("filters_by_status", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSavingService(db)
		user := testutil.CreateTestUser(t, db)
		future := time.Now().AddDate(0, 6, 0)
		testutil.CreateTestSaving(t, db, user.ID, 10000, 0, future)
		funded := testutil.CreateTestSaving(t, db, user.ID, 10000, 10000, future)

		_, err := svc.UpdateSavingProgress(Requester{UserID: user.ID, Role: models.RoleUser},
			funded.ID, 10000)
		testutil.AssertNoError(t, err)

		completed := models.SavingStatusCompleted
		result, err := svc.GetUserSavings(user.ID, &completed, pagination.PageRequest{})
		testutil.AssertNoError(t, err)

		if len(result.Data) != 1 {
			t.Errorf("expected 1 completed goal, got %d", len(result.Data))
		}
	})
}

func TestGetSavingProgress(t *testing.T) {
	t.Run("derives_progress_fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSavingService(db)
		user := testutil.CreateTestUser(t, db)
		// 10 days out, 7500 of 10000 saved.
		saving := testutil.CreateTestSaving(t, db, user.ID, 10000, 7500, time.Now().Add(10*24*time.Hour))

		progress, err := svc.GetSavingProgress(Requester{UserID: user.ID, Role: models.RoleUser}, saving.ID)
		testutil.AssertNoError(t, err)

		if progress.ProgressPercentage != 75 {
			t.Errorf("expected 75%% progress, got %.1f", progress.ProgressPercentage)
		}
		testutil.AssertBalance(t, progress.AmountNeeded, 2500)
		if progress.DaysLeft != 10 {
			t.Errorf("expected 10 days left, got %d", progress.DaysLeft)
		}
		testutil.AssertBalance(t, progress.DailySavingsRequired, 250)
		if !progress.IsAchievable {
			t.Error("expected goal to be achievable")
		}
	})

	t.Run("past_target_with_shortfall_unachievable", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSavingService(db)
		user := testutil.CreateTestUser(t, db)
		saving := testutil.CreateTestSaving(t, db, user.ID, 10000, 5000, time.Now().AddDate(0, 0, -5))

		progress, err := svc.GetSavingProgress(Requester{UserID: user.ID, Role: models.RoleUser}, saving.ID)
		testutil.AssertNoError(t, err)

		if progress.IsAchievable {
			t.Error("expected goal to be unachievable")
		}
		if progress.DaysLeft != 0 {
			t.Errorf("expected 0 days left, got %d", progress.DaysLeft)
		}
	})

	t.Run("funded_goal_achievable_regardless_of_date", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSavingService(db)
		user := testutil.CreateTestUser(t, db)
		saving := testutil.CreateTestSaving(t, db, user.ID, 10000, 12000, time.Now().AddDate(0, 0, -5))

		progress, err := svc.GetSavingProgress(Requester{UserID: user.ID, Role: models.RoleUser}, saving.ID)
		testutil.AssertNoError(t, err)

		if !progress.IsAchievable {
			t.Error("expected funded goal to be achievable")
		}
		testutil.AssertBalance(t, progress.AmountNeeded, 0)
	})
}

func TestUpdateSavingProgress(t *testing.T) {
	t.Run("reaching_target_completes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSavingService(db)
		user := testutil.CreateTestUser(t, db)
		saving := testutil.CreateTestSaving(t, db, user.ID, 10000, 5000, time.Now().AddDate(0, 6, 0))

		updated, err := svc.UpdateSavingProgress(Requester{UserID: user.ID, Role: models.RoleUser}, saving.ID, 10000)
		testutil.AssertNoError(t, err)
		if updated.Status != models.SavingStatusCompleted {
			t.Errorf("expected Completed, got %s", updated.Status)
		}
	})

	t.Run("dropping_below_target_reopens", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSavingService(db)
		user := testutil.CreateTestUser(t, db)
		saving := testutil.CreateTestSaving(t, db, user.ID, 10000, 10000, time.Now().AddDate(0, 6, 0))
		req := Requester{UserID: user.ID, Role: models.RoleUser}

		_, err := svc.UpdateSavingProgress(req, saving.ID, 10000)
		testutil.AssertNoError(t, err)

		updated, err := svc.UpdateSavingProgress(req, saving.ID, 4000)
		testutil.AssertNoError(t, err)
		if updated.Status != models.SavingStatusInProgress {
			t.Errorf("expected In Progress, got %s", updated.Status)
		}
	})

	t.Run("abandoned_status_sticks", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSavingService(db)
		user := testutil.CreateTestUser(t, db)
		saving := testutil.CreateTestSaving(t, db, user.ID, 10000, 0, time.Now().AddDate(0, 6, 0))
		req := Requester{UserID: user.ID, Role: models.RoleUser}

		abandoned := models.SavingStatusAbandoned
		_, err := svc.UpdateSaving(req, saving.ID, SavingUpdate{Status: &abandoned})
		testutil.AssertNoError(t, err)

		updated, err := svc.UpdateSavingProgress(req, saving.ID, 10000)
		testutil.AssertNoError(t, err)
		if updated.Status != models.SavingStatusAbandoned {
			t.Errorf("expected Abandoned to stick, got %s", updated.Status)
		}
	})

	t.Run("negative_amount_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSavingService(db)
		user := testutil.CreateTestUser(t, db)
		saving := testutil.CreateTestSaving(t, db, user.ID, 10000, 0, time.Now().AddDate(0, 6, 0))

		_, err := svc.UpdateSavingProgress(Requester{UserID: user.ID, Role: models.RoleUser}, saving.ID, -100)
		testutil.AssertAppError(t, err, "VALIDATION_FAILED")
	})
}

func TestUpdateSaving(t *testing.T) {
	t.Run("raising_target_reopens_completed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSavingService(db)
		user := testutil.CreateTestUser(t, db)
		req := Requester{UserID: user.ID, Role: models.RoleUser}
		saving, err := svc.CreateSaving(user.ID, SavingInput{
			Name: "Goal", Amount: 10000, CurrentAmount: 10000,
			TargetDate: time.Now().AddDate(0, 6, 0),
		})
		testutil.AssertNoError(t, err)

		amount := int64(20000)
		updated, err := svc.UpdateSaving(req, saving.ID, SavingUpdate{Amount: &amount})
		testutil.AssertNoError(t, err)
		if updated.Status != models.SavingStatusInProgress {
			t.Errorf("expected In Progress after raising target, got %s", updated.Status)
		}
	})
}

func TestDeleteSaving(t *testing.T) {
	t.Run("deletes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSavingService(db)
		user := testutil.CreateTestUser(t, db)
		saving := testutil.CreateTestSaving(t, db, user.ID, 10000, 0, time.Now().AddDate(0, 6, 0))
		req := Requester{UserID: user.ID, Role: models.RoleUser}

		testutil.AssertNoError(t, svc.DeleteSaving(req, saving.ID))

		_, err := svc.GetSavingProgress(req, saving.ID)
		testutil.AssertAppError(t, err, "SAVING_NOT_FOUND")
	})
}
