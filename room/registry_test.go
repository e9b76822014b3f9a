package room

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestRegistry_CreateAndGet(t *testing.T) {
	reg := NewRegistry()

	r := reg.Create("host1", "Alice", CreateOptions{Category: 18, Difficulty: "hard"})
	if r.ID == "" {
		t.Fatal("Create returned room with empty ID")
	}
	if r.HostID != "host1" {
		t.Errorf("HostID = %q, want host1", r.HostID)
	}
	if r.MaxPlayers != DefaultMaxPlayers {
		t.Errorf("MaxPlayers = %d, want default %d", r.MaxPlayers, DefaultMaxPlayers)
	}
	if r.PlayerCount() != 1 {
		t.Errorf("PlayerCount = %d, want 1 (host seated on create)", r.PlayerCount())
	}

	got, err := reg.Get(r.ID)
	if err != nil {
		t.Fatalf("Get(%s) error: %v", r.ID, err)
	}
	if got != r {
		t.Error("Get returned a different room instance")
	}

	if _, err := reg.Get("room_missing"); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("Get missing room error = %v, want ErrRoomNotFound", err)
	}
}

func TestRegistry_JoinRespectsCapacity(t *testing.T) {
	reg := NewRegistry()
	r := reg.Create("host1", "Alice", CreateOptions{MaxPlayers: 2})

	if _, err := reg.Join(r.ID, "p2", "Bob"); err != nil {
		t.Fatalf("second join failed: %v", err)
	}
	if _, err := reg.Join(r.ID, "p3", "Carol"); !errors.Is(err, ErrRoomFull) {
		t.Errorf("third join error = %v, want ErrRoomFull", err)
	}
	if r.PlayerCount() != 2 {
		t.Errorf("PlayerCount after rejected join = %d, want 2", r.PlayerCount())
	}
}

func TestRegistry_LeaveLastPlayerDeletesRoom(t *testing.T) {
	reg := NewRegistry()
	r := reg.Create("host1", "Alice", CreateOptions{})

	_, gone, err := reg.Leave(r.ID, "host1")
	if err != nil {
		t.Fatalf("Leave failed: %v", err)
	}
	if !gone {
		t.Error("Leave of last player did not report room deletion")
	}
	if _, err := reg.Get(r.ID); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("room still reachable after deletion, err = %v", err)
	}
	if reg.Count() != 0 {
		t.Errorf("Count = %d, want 0", reg.Count())
	}
}

func TestRegistry_HostReassignmentIsDeterministic(t *testing.T) {
	reg := NewRegistry()
	r := reg.Create("host1", "Alice", CreateOptions{})
	if _, err := reg.Join(r.ID, "p2", "Bob"); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Join(r.ID, "p3", "Carol"); err != nil {
		t.Fatal(err)
	}

	r2, gone, err := reg.Leave(r.ID, "host1")
	if err != nil || gone {
		t.Fatalf("Leave host: gone=%v err=%v", gone, err)
	}
	// p2 joined before p3, so p2 inherits the room.
	if r2.HostID != "p2" {
		t.Errorf("new host = %q, want p2 (earliest join order)", r2.HostID)
	}

	r3, _, err := reg.Leave(r.ID, "p2")
	if err != nil {
		t.Fatal(err)
	}
	if r3.HostID != "p3" {
		t.Errorf("new host = %q, want p3", r3.HostID)
	}
}

func TestRegistry_LeaveRacingJoinNeverStrandsPlayer(t *testing.T) {
	// the last player leaving must not delete the room out from under a
	// concurrent join that already resolved the room pointer
	for i := 0; i < 500; i++ {
		reg := NewRegistry()
		r := reg.Create("host1", "Alice", CreateOptions{})

		var wg sync.WaitGroup
		joined := make([]bool, 4)

		wg.Add(1)
		go func() {
			defer wg.Done()
			reg.Leave(r.ID, "host1")
		}()
		for j := 0; j < len(joined); j++ {
			wg.Add(1)
			go func(j int) {
				defer wg.Done()
				if _, err := reg.Join(r.ID, fmt.Sprintf("p%d", j), "Bob"); err == nil {
					joined[j] = true
				}
			}(j)
		}
		wg.Wait()

		for j, ok := range joined {
			if !ok {
				continue
			}
			got, err := reg.Get(r.ID)
			if err != nil {
				t.Fatalf("iteration %d: join of p%d succeeded but the room is gone", i, j)
			}
			seated := false
			for _, slot := range got.PlayerSlots() {
				if slot.ID == fmt.Sprintf("p%d", j) {
					seated = true
				}
			}
			if !seated {
				t.Fatalf("iteration %d: join of p%d succeeded but the seat is missing", i, j)
			}
		}
	}
}

func TestRegistry_LeaveUnknownPlayer(t *testing.T) {
	reg := NewRegistry()
	r := reg.Create("host1", "Alice", CreateOptions{})

	if _, _, err := reg.Leave(r.ID, "ghost"); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("Leave unknown player error = %v, want ErrPlayerNotFound", err)
	}
}

func TestRegistry_ListExcludesPrivateRooms(t *testing.T) {
	reg := NewRegistry()
	public := reg.Create("host1", "Alice", CreateOptions{})
	reg.Create("host2", "Bob", CreateOptions{IsPrivate: true})

	snapshots := reg.List()
	if len(snapshots) != 1 {
		t.Fatalf("List returned %d rooms, want 1", len(snapshots))
	}
	if snapshots[0].RoomID != public.ID {
		t.Errorf("listed room = %s, want %s", snapshots[0].RoomID, public.ID)
	}
	if reg.Count() != 2 {
		t.Errorf("Count = %d, want 2 (private rooms still counted)", reg.Count())
	}
}

func TestCanStart(t *testing.T) {
	reg := NewRegistry()
	r := reg.Create("host1", "Alice", CreateOptions{})

	if err := CanStart(r, "p2"); !errors.Is(err, ErrNotHost) {
		t.Errorf("non-host start error = %v, want ErrNotHost", err)
	}
	if err := CanStart(r, "host1"); !errors.Is(err, ErrNotEnoughPlayers) {
		t.Errorf("solo start error = %v, want ErrNotEnoughPlayers", err)
	}

	if _, err := reg.Join(r.ID, "p2", "Bob"); err != nil {
		t.Fatal(err)
	}
	if err := CanStart(r, "host1"); !errors.Is(err, ErrPlayersNotReady) {
		t.Errorf("unready start error = %v, want ErrPlayersNotReady", err)
	}

	if _, err := reg.SetReady(r.ID, "host1", true); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.SetReady(r.ID, "p2", true); err != nil {
		t.Fatal(err)
	}
	if err := CanStart(r, "host1"); err != nil {
		t.Errorf("start with all ready error = %v, want nil", err)
	}

	r.SetState(StateInProgress)
	if err := CanStart(r, "host1"); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("start on running room error = %v, want ErrAlreadyStarted", err)
	}
}

func TestSetReady_TogglesAndReports(t *testing.T) {
	reg := NewRegistry()
	r := reg.Create("host1", "Alice", CreateOptions{})
	if _, err := reg.Join(r.ID, "p2", "Bob"); err != nil {
		t.Fatal(err)
	}

	if r.AllReady() {
		t.Error("AllReady true before anyone readied")
	}
	if _, err := reg.SetReady(r.ID, "host1", true); err != nil {
		t.Fatal(err)
	}
	if r.AllReady() {
		t.Error("AllReady true with one player pending")
	}
	if _, err := reg.SetReady(r.ID, "p2", true); err != nil {
		t.Fatal(err)
	}
	if !r.AllReady() {
		t.Error("AllReady false after everyone readied")
	}

	if _, err := reg.SetReady(r.ID, "p2", false); err != nil {
		t.Fatal(err)
	}
	if r.AllReady() {
		t.Error("AllReady true after a player un-readied")
	}

	if _, err := reg.SetReady(r.ID, "ghost", true); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("SetReady unknown player error = %v, want ErrPlayerNotFound", err)
	}
}
