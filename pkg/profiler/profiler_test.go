package profiler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func TestProfiler_Disabled(t *testing.T) {
	p := New(Config{Enable: false, CPUProfile: filepath.Join(t.TempDir(), "cpu.out")}, zap.NewNop())

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := p.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if _, err := os.Stat(p.config.CPUProfile); !os.IsNotExist(err) {
		t.Error("disabled profiler must not create files")
	}
}

func TestProfiler_Files(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		Enable:      true,
		CPUProfile:  filepath.Join(dir, "cpu.out"),
		MemProfile:  filepath.Join(dir, "mem.out"),
		ProfileTime: 60,
	}
	p := New(cfg, zap.NewNop())

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := p.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	// повторная остановка безопасна
	if err := p.stopCPUProfile(); err != nil {
		t.Errorf("second stopCPUProfile() error = %v", err)
	}

	for _, path := range []string{cfg.CPUProfile, cfg.MemProfile} {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("profile %s: %v", path, err)
		}
		if info.Size() == 0 {
			t.Errorf("profile %s is empty", path)
		}
	}
}

func TestProfiler_BadCPUPath(t *testing.T) {
	p := New(Config{Enable: true, CPUProfile: filepath.Join(t.TempDir(), "missing", "cpu.out")}, zap.NewNop())
	if err := p.Start(context.Background()); err == nil {
		t.Fatal("Start() with unwritable CPU profile path should fail")
	}
}

func TestProfiler_Handler(t *testing.T) {
	r := chi.NewRouter()
	r.Mount(MountPath, New(Config{Enable: true}, zap.NewNop()).Handler())

	req := httptest.NewRequest(http.MethodGet, MountPath+"/pprof/", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("GET %s/pprof/ status = %d", MountPath, rec.Code)
	}
}
