package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestBudgetFlow_OverlapRejected(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "windows@test.com", "password123")
	categoryID := app.createCategory(t, token, "Dining", "expense")

	now := time.Now()
	body := fmt.Sprintf(`{"category_id":%q,"amount":10000,"date_from":%q,"date_to":%q}`,
		categoryID, now.Format("2006-01-02"), now.AddDate(0, 1, 0).Format("2006-01-02"))
	rec := app.request("POST", "/api/v1/budgets", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("budget create failed: %d %s", rec.Code, rec.Body.String())
	}

	// Second budget for the same category intersecting the window
	overlapping := fmt.Sprintf(`{"category_id":%q,"amount":20000,"date_from":%q,"date_to":%q}`,
		categoryID, now.AddDate(0, 0, 15).Format("2006-01-02"), now.AddDate(0, 2, 0).Format("2006-01-02"))
	rec = app.request("POST", "/api/v1/budgets", overlapping, token)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	errObj := parseJSON(t, rec)["error"].(map[string]interface{})
	if errObj["code"] != "OVERLAPPING_BUDGET" {
		t.Errorf("expected OVERLAPPING_BUDGET, got %v", errObj["code"])
	}
}

func TestBudgetFlow_DetailStats(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "stats@test.com", "password123")
	accountID := app.createAccount(t, token, "Wallet", 100000)
	categoryID := app.createCategory(t, token, "Dining", "expense")

	now := time.Now()
	body := fmt.Sprintf(`{"category_id":%q,"amount":10000,"date_from":%q,"date_to":%q}`,
		categoryID, now.AddDate(0, 0, -5).Format("2006-01-02"), now.AddDate(0, 0, 5).Format("2006-01-02"))
	rec := app.request("POST", "/api/v1/budgets", body, token)
	budget := parseJSON(t, rec)["budget"].(map[string]interface{})
	budgetID := budget["id"].(string)

	rec = app.request("POST", "/api/v1/expenses",
		fmt.Sprintf(`{"amount":2500,"category_id":%q,"account_id":%q}`, categoryID, accountID), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expense failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/budgets/"+budgetID, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("budget detail failed: %d %s", rec.Code, rec.Body.String())
	}
	detail := parseJSON(t, rec)
	stats := detail["stats"].(map[string]interface{})
	if stats["spent"].(float64) != 2500 {
		t.Errorf("expected spent 2500, got %v", stats["spent"])
	}
	if stats["remaining"].(float64) != 7500 {
		t.Errorf("expected remaining 7500, got %v", stats["remaining"])
	}
	if stats["percentage_spent"].(float64) != 25 {
		t.Errorf("expected 25%% spent, got %v", stats["percentage_spent"])
	}
}

func TestSavingFlow_ProgressLifecycle(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "saver@test.com", "password123")

	target := time.Now().AddDate(0, 6, 0).Format(time.RFC3339)
	rec := app.request("POST", "/api/v1/savings",
		fmt.Sprintf(`{"name":"Vacation","amount":100000,"target_date":%q}`, target), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("saving create failed: %d %s", rec.Code, rec.Body.String())
	}
	saving := parseJSON(t, rec)["saving"].(map[string]interface{})
	savingID := saving["id"].(string)
	if saving["status"] != "In Progress" {
		t.Errorf("expected In Progress, got %v", saving["status"])
	}

	// Reach the target
	rec = app.request("PUT", "/api/v1/savings/"+savingID+"/progress",
		`{"current_amount":100000}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("progress update failed: %d %s", rec.Code, rec.Body.String())
	}
	saving = parseJSON(t, rec)["saving"].(map[string]interface{})
	if saving["status"] != "Completed" {
		t.Errorf("expected Completed, got %v", saving["status"])
	}

	// Progress view carries the derived fields
	rec = app.request("GET", "/api/v1/savings/"+savingID, "", token)
	saving = parseJSON(t, rec)["saving"].(map[string]interface{})
	if saving["progress_percentage"].(float64) != 100 {
		t.Errorf("expected 100%% progress, got %v", saving["progress_percentage"])
	}
	if saving["is_achievable"] != true {
		t.Errorf("expected achievable, got %v", saving["is_achievable"])
	}
}

func TestAdminFlow_SummaryAcrossUsers(t *testing.T) {
	app := setupApp(t)
	aliceToken, _, _ := app.registerUser(t, "alice4@test.com", "password123")
	bobToken, _, _ := app.registerUser(t, "bob4@test.com", "password123")
	adminToken := app.registerAdmin(t, "root@finance.admin.io")

	aliceAcct := app.createAccount(t, aliceToken, "Alice", 100000)
	aliceCat := app.createCategory(t, aliceToken, "Groceries", "expense")
	bobAcct := app.createAccount(t, bobToken, "Bob", 100000)
	bobCat := app.createCategory(t, bobToken, "Groceries", "expense")

	app.request("POST", "/api/v1/expenses",
		fmt.Sprintf(`{"amount":3000,"category_id":%q,"account_id":%q}`, aliceCat, aliceAcct), aliceToken)
	app.request("POST", "/api/v1/expenses",
		fmt.Sprintf(`{"amount":1000,"category_id":%q,"account_id":%q}`, bobCat, bobAcct), bobToken)

	rec := app.request("GET", "/api/v1/admin/summary/expenses", "", adminToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin summary failed: %d %s", rec.Code, rec.Body.String())
	}
	summary := parseJSON(t, rec)["summary"].(map[string]interface{})
	if summary["total"].(float64) != 4000 {
		t.Errorf("expected total 4000, got %v", summary["total"])
	}
	byUser := summary["by_user"].([]interface{})
	if len(byUser) != 2 {
		t.Errorf("expected 2 user rows, got %d", len(byUser))
	}
}
