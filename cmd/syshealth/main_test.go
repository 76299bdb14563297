package main

import (
	"bytes"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"syshealth/internal/config"
)

func testConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.Interval = 10 * time.Millisecond
	cfg.ListenAddr = "127.0.0.1:0"
	cfg.ReportTitle = "cli"
	return cfg
}

func TestVersionCmd(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.HasPrefix(out.String(), "syshealth ") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunReport(t *testing.T) {
	var out bytes.Buffer
	if err := runReport(context.Background(), testConfig(), &out); err != nil {
		t.Fatalf("runReport() error = %v", err)
	}

	report := out.String()
	if !strings.HasPrefix(report, "--- System Health Report (cli) ---") {
		t.Errorf("unexpected header:\n%s", report)
	}
	// после одного тика заглушки быть не может
	if strings.Contains(report, "Awaiting first timer tick") || !strings.Contains(report, "(Last tick: 1)") {
		t.Errorf("report is not from a collected snapshot:\n%s", report)
	}
}

func TestRunReport_UnknownSource(t *testing.T) {
	cfg := testConfig()
	cfg.Source = "procfs"
	if err := runReport(context.Background(), cfg, &bytes.Buffer{}); err == nil {
		t.Error("runReport() with unknown source should fail")
	}
}

func TestRunServe_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runServe(ctx, testConfig()) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("runServe() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("runServe did not stop after cancel")
	}
}

func TestRunServe_ListenFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	cfg := testConfig()
	cfg.ListenAddr = ln.Addr().String()

	if err := runServe(context.Background(), cfg); err == nil || !strings.Contains(err.Error(), "failed to start HTTP server") {
		t.Errorf("runServe() error = %v, want listen failure", err)
	}
}

func TestRunServe_InvalidInterval(t *testing.T) {
	cfg := testConfig()
	cfg.Interval = 0

	if err := runServe(context.Background(), cfg); err == nil || !strings.Contains(err.Error(), "failed to start scheduler") {
		t.Errorf("runServe() error = %v, want scheduler arm failure", err)
	}
}
