// Package testutil provides test doubles shared by roster's package tests.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Iron-Ham/roster/internal/notify"
	"github.com/Iron-Ham/roster/internal/user"
)

// MakeUsers returns n users whose uids are prefix-0 through prefix-(n-1).
func MakeUsers(prefix string, n int) user.List {
	users := make(user.List, n)
	for i := range users {
		users[i] = user.User{
			UID:       user.UID(fmt.Sprintf("%s-%d", prefix, i)),
			FirstName: fmt.Sprintf("%s%d", prefix, i),
			LastName:  "Tester",
			Avatar:    fmt.Sprintf("https://robohash.org/%s-%d.png", prefix, i),
		}
	}
	return users
}

// Response scripts one FetchBatch call on a FakeSource.
type Response struct {
	Users user.List
	Err   error
	// Panic, when non-nil, is raised instead of returning.
	Panic any
	// Gate, when non-nil, holds the call until it is closed or the
	// context is done.
	Gate <-chan struct{}
}

// Succeed scripts a successful call.
func Succeed(users user.List) Response { return Response{Users: users} }

// Fail scripts a failing call.
func Fail(err error) Response { return Response{Err: err} }

// FakeSource is a scripted source.Source. Each call consumes the next
// Response; once the script runs out, calls succeed with generated users.
type FakeSource struct {
	mu        sync.Mutex
	responses []Response
	calls     []int
	started   chan int
}

// NewFakeSource creates a FakeSource with the given script.
func NewFakeSource(responses ...Response) *FakeSource {
	return &FakeSource{
		responses: responses,
		started:   make(chan int, 64),
	}
}

// FetchBatch implements source.Source.
func (f *FakeSource) FetchBatch(ctx context.Context, count int) (user.List, error) {
	f.mu.Lock()
	n := len(f.calls)
	f.calls = append(f.calls, count)
	var resp Response
	if len(f.responses) > 0 {
		resp = f.responses[0]
		f.responses = f.responses[1:]
	} else {
		resp = Succeed(MakeUsers(fmt.Sprintf("auto%d", n), count))
	}
	f.mu.Unlock()

	select {
	case f.started <- count:
	default:
	}

	if resp.Gate != nil {
		select {
		case <-resp.Gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if resp.Panic != nil {
		panic(resp.Panic)
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	return resp.Users.Clone(), nil
}

// Calls returns the count argument of every call so far.
func (f *FakeSource) Calls() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.calls...)
}

// WaitStarted blocks until n more calls have entered FetchBatch.
func (f *FakeSource) WaitStarted(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-f.started:
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for fetch %d of %d to start", i+1, n)
		}
	}
}

// RecordingSink is a notify.Sink that keeps everything it is shown.
type RecordingSink struct {
	mu    sync.Mutex
	shown []notify.Notification
}

// Show implements notify.Sink.
func (s *RecordingSink) Show(n notify.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shown = append(s.shown, n)
}

// Notifications returns a copy of everything shown so far.
func (s *RecordingSink) Notifications() []notify.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notify.Notification(nil), s.shown...)
}

// Titles returns the title of every notification shown so far.
func (s *RecordingSink) Titles() []string {
	shown := s.Notifications()
	titles := make([]string, len(shown))
	for i, n := range shown {
		titles[i] = n.Title
	}
	return titles
}

// Eventually polls cond until it holds or timeout elapses.
func Eventually(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition not met within %v: %s", timeout, msg)
}
