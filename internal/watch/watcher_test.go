package watch

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// changeRecorder collects change batches behind a mutex.
type changeRecorder struct {
	mu      sync.Mutex
	batches [][]string
}

func (r *changeRecorder) record(files []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, files)
	return nil
}

func (r *changeRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.batches)
}

func (r *changeRecorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var files []string
	for _, b := range r.batches {
		files = append(files, b...)
	}
	return files
}

func TestWatcherDetectsGoChanges(t *testing.T) {
	tmpDir := t.TempDir()

	rec := &changeRecorder{}
	w, err := New([]string{tmpDir}, nil, nil, rec.record)
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer w.Stop()

	if err := w.Start(); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}

	time.Sleep(200 * time.Millisecond) // Allow watcher to initialize

	goFile := filepath.Join(tmpDir, "model.go")
	if err := os.WriteFile(goFile, []byte("package model\n"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	time.Sleep(700 * time.Millisecond) // Wait for debounce

	if rec.count() == 0 {
		t.Fatal("Expected changes to be detected")
	}

	found := false
	for _, f := range rec.all() {
		if filepath.Base(f) == "model.go" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected model.go in changes, got %v", rec.all())
	}
}

func TestWatcherIgnoresNonGoFiles(t *testing.T) {
	tmpDir := t.TempDir()

	rec := &changeRecorder{}
	w, err := New([]string{tmpDir}, nil, nil, rec.record)
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer w.Stop()

	if err := w.Start(); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}

	time.Sleep(200 * time.Millisecond)

	for name, content := range map[string]string{
		"notes.txt":     "irrelevant",
		"model_test.go": "package model\n",
	} {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}

	time.Sleep(700 * time.Millisecond)

	if rec.count() != 0 {
		t.Errorf("Expected no changes, got %v", rec.all())
	}
}

func TestWatcherIgnoredPatterns(t *testing.T) {
	tmpDir := t.TempDir()

	rec := &changeRecorder{}
	w, err := New([]string{tmpDir}, []string{"mirror_registrations.go"}, nil, rec.record)
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer w.Stop()

	if err := w.Start(); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}

	time.Sleep(200 * time.Millisecond)

	generated := filepath.Join(tmpDir, "mirror_registrations.go")
	if err := os.WriteFile(generated, []byte("package model\n"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	time.Sleep(700 * time.Millisecond)

	if rec.count() != 0 {
		t.Errorf("Expected generated file to be ignored, got %v", rec.all())
	}
}

func TestWatcherValidation(t *testing.T) {
	if _, err := New(nil, nil, nil, func([]string) error { return nil }); err == nil {
		t.Error("Expected error for empty roots")
	}

	if _, err := New([]string{"."}, nil, nil, nil); err == nil {
		t.Error("Expected error for nil callback")
	}
}

func TestWatcherStopIdempotent(t *testing.T) {
	tmpDir := t.TempDir()

	w, err := New([]string{tmpDir}, nil, nil, func([]string) error { return nil })
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}

	if err := w.Start(); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}

	if err := w.Stop(); err != nil {
		t.Errorf("First stop failed: %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("Second stop failed: %v", err)
	}
}

func TestFindDirectoriesSkipsHidden(t *testing.T) {
	tmpDir := t.TempDir()

	for _, dir := range []string{"pkg", "pkg/sub", ".git", "vendor", "testdata", "_build"} {
		if err := os.MkdirAll(filepath.Join(tmpDir, dir), 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", dir, err)
		}
	}

	w, err := New([]string{tmpDir}, nil, nil, func([]string) error { return nil })
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer w.watcher.Close()

	dirs, err := w.findDirectories(tmpDir)
	if err != nil {
		t.Fatalf("findDirectories failed: %v", err)
	}

	want := map[string]bool{
		tmpDir:                              true,
		filepath.Join(tmpDir, "pkg"):        true,
		filepath.Join(tmpDir, "pkg", "sub"): true,
	}

	if len(dirs) != len(want) {
		t.Errorf("Expected %d directories, got %d: %v", len(want), len(dirs), dirs)
	}
	for _, dir := range dirs {
		if !want[dir] {
			t.Errorf("Unexpected directory watched: %s", dir)
		}
	}
}

func TestIsGoSource(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"model.go", true},
		{"model_test.go", false},
		{"model.txt", false},
		{"dir/model.go", true},
		{"go", false},
	}

	for _, tc := range tests {
		if got := isGoSource(tc.path); got != tc.want {
			t.Errorf("isGoSource(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestDebouncerAdd(t *testing.T) {
	var mu sync.Mutex
	var called bool
	var files []string

	debouncer := NewDebouncer(50 * time.Millisecond)
	debouncer.SetCallback(func(f []string) {
		mu.Lock()
		defer mu.Unlock()
		called = true
		files = f
	})

	// Add multiple files
	debouncer.Add("a.go")
	debouncer.Add("b.go")
	debouncer.Add("a.go") // Duplicate

	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	if !called {
		t.Fatal("Expected callback to be called")
	}
	if len(files) != 2 {
		t.Errorf("Expected 2 unique files, got %d: %v", len(files), files)
	}
}

func TestDebouncerCoalesces(t *testing.T) {
	var mu sync.Mutex
	var calls int

	debouncer := NewDebouncer(100 * time.Millisecond)
	debouncer.SetCallback(func([]string) {
		mu.Lock()
		defer mu.Unlock()
		calls++
	})

	// Each add lands inside the previous window, so only one flush fires.
	debouncer.Add("a.go")
	time.Sleep(30 * time.Millisecond)
	debouncer.Add("b.go")
	time.Sleep(30 * time.Millisecond)
	debouncer.Add("c.go")

	time.Sleep(250 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	if calls != 1 {
		t.Errorf("Expected 1 callback, got %d", calls)
	}
}

func TestDebouncerStop(t *testing.T) {
	var mu sync.Mutex
	var called bool

	debouncer := NewDebouncer(50 * time.Millisecond)
	debouncer.SetCallback(func([]string) {
		mu.Lock()
		defer mu.Unlock()
		called = true
	})

	debouncer.Add("a.go")
	debouncer.Stop()

	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	if called {
		t.Error("Expected no callback after Stop")
	}
}
