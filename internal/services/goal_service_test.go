package services

import (
	"testing"

	"fintrack/internal/models"
	"fintrack/internal/testutil"
)

func TestCreateGoal(t *testing.T) {
	t.Run("with_links", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGoalService(db)
		user := testutil.CreateTestUser(t, db)
		a := testutil.CreateTestAccount(t, db, user.ID)
		b := testutil.CreateTestAccount(t, db, user.ID)

		goal, err := svc.CreateGoal(user.ID, GoalInput{
			Name: "House", TargetAmount: 2000000, TargetDate: "2030-01-01",
			LinkedAccountIDs: []string{a.ID, b.ID, a.ID},
		})
		testutil.AssertNoError(t, err)
		if len(goal.LinkedAccountIDs()) != 2 {
			t.Errorf("expected 2 distinct links, got %v", goal.LinkedAccountIDs())
		}
	})

	t.Run("foreign_account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGoalService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		theirs := testutil.CreateTestAccount(t, db, other.ID)

		_, err := svc.CreateGoal(user.ID, GoalInput{Name: "Trip", TargetAmount: 1, LinkedAccountIDs: []string{theirs.ID}})
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	})

	t.Run("validation", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGoalService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateGoal(user.ID, GoalInput{Name: ""})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
		_, err = svc.CreateGoal(user.ID, GoalInput{Name: "x", TargetDate: "soon"})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestUpdateGoal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewGoalService(db)
	user := testutil.CreateTestUser(t, db)
	a := testutil.CreateTestAccount(t, db, user.ID)
	goal := testutil.CreateTestGoal(t, db, user.ID, 1000, a.ID)

	updated, err := svc.UpdateGoal(user.ID, goal.ID, GoalInput{Name: "Emergency", TargetAmount: 5000, CurrentAmount: 100})
	testutil.AssertNoError(t, err)
	if updated.Name != "Emergency" {
		t.Errorf("expected name Emergency, got %s", updated.Name)
	}
	testutil.AssertFloat(t, "target", updated.TargetAmount, 5000)
	if len(updated.Links) != 0 {
		t.Errorf("expected links removed, got %d", len(updated.Links))
	}
}

func TestDeleteGoal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewGoalService(db)
	user := testutil.CreateTestUser(t, db)
	a := testutil.CreateTestAccount(t, db, user.ID)
	goal := testutil.CreateTestGoal(t, db, user.ID, 1000, a.ID)

	testutil.AssertNoError(t, svc.DeleteGoal(user.ID, goal.ID))

	_, err := svc.GetGoalByID(user.ID, goal.ID)
	testutil.AssertAppError(t, err, "GOAL_NOT_FOUND")

	var links int64
	db.Model(&models.GoalAccountLink{}).Where("goal_id = ?", goal.ID).Count(&links)
	if links != 0 {
		t.Errorf("expected links removed, got %d", links)
	}

	goals, err := svc.GetUserGoals(user.ID)
	testutil.AssertNoError(t, err)
	if len(goals) != 0 {
		t.Errorf("expected no goals, got %d", len(goals))
	}
}
