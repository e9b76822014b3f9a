package services

import (
	"errors"
	"testing"

	"github.com/wfunc/triviaserver/persistence"
)

func TestUserService_EnsureAndGet(t *testing.T) {
	db := newMemoryDB()
	svc := NewUserService(db)

	if err := svc.EnsureUser("p1", "Alice"); err != nil {
		t.Fatalf("EnsureUser failed: %v", err)
	}

	user, err := svc.GetUser("p1")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if user.Nickname != "Alice" || user.TotalGames != 0 {
		t.Errorf("fresh user = %+v", user)
	}

	// re-ensuring keeps accumulated stats and refreshes the nickname
	if err := db.UpdateUserStats("p1", 500, true); err != nil {
		t.Fatal(err)
	}
	if err := svc.EnsureUser("p1", "Alicia"); err != nil {
		t.Fatal(err)
	}
	user, err = svc.GetUser("p1")
	if err != nil {
		t.Fatal(err)
	}
	if user.Nickname != "Alicia" {
		t.Errorf("nickname = %q, want Alicia", user.Nickname)
	}
	if user.TotalGames != 1 || user.TotalWins != 1 {
		t.Errorf("re-ensure reset stats: %+v", user)
	}

	if _, err := svc.GetUser("ghost"); !errors.Is(err, persistence.ErrRecordNotFound) {
		t.Errorf("GetUser(ghost) error = %v, want ErrRecordNotFound", err)
	}
}

func TestUserService_GetUserWithStats(t *testing.T) {
	db := newMemoryDB()
	svc := NewUserService(db)

	if err := svc.EnsureUser("p1", "Alice"); err != nil {
		t.Fatal(err)
	}

	profile, stats, err := svc.GetUserWithStats("p1")
	if err != nil {
		t.Fatalf("GetUserWithStats failed: %v", err)
	}
	if stats.WinRate != 0 || stats.AverageScore != 0 {
		t.Errorf("no-games stats = %+v, want zeros", stats)
	}

	db.UpdateUserStats("p1", 1000, true)
	db.UpdateUserStats("p1", 500, false)

	profile, stats, err = svc.GetUserWithStats("p1")
	if err != nil {
		t.Fatal(err)
	}
	if profile.TotalGames != 2 {
		t.Errorf("TotalGames = %d, want 2", profile.TotalGames)
	}
	if stats.WinRate != 50 {
		t.Errorf("WinRate = %v, want 50", stats.WinRate)
	}
	if stats.AverageScore != 750 {
		t.Errorf("AverageScore = %d, want 750", stats.AverageScore)
	}
}
