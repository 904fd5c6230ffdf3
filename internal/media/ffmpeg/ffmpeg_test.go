package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func stubCommand(t *testing.T, mode string, captured *[][]string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		if captured != nil {
			*captured = append(*captured, append([]string{name}, args...))
		}
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "FFMPEG_HELPER_MODE="+mode)
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
}

func TestNewWithBinary(t *testing.T) {
	runner := New(WithBinary("/opt/ffmpeg"))
	if runner.binary != "/opt/ffmpeg" {
		t.Fatalf("expected binary override to be applied, got %q", runner.binary)
	}
}

func TestNormalizeArgs(t *testing.T) {
	var captured [][]string
	stubCommand(t, "success", &captured)

	runner := New()
	if err := runner.Normalize(context.Background(), "/in/raw.m4a", "/out/audio.mp3"); err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}

	if len(captured) != 1 {
		t.Fatalf("expected one invocation, got %d", len(captured))
	}
	args := strings.Join(captured[0], " ")
	if !strings.Contains(args, "-codec:a libmp3lame -q:a 2") {
		t.Fatalf("expected libmp3lame encode args, got %s", args)
	}
	if !strings.HasSuffix(args, "/out/audio.mp3") {
		t.Fatalf("expected output path last, got %s", args)
	}
}

func TestNormalizeRequiresPaths(t *testing.T) {
	runner := New()
	if err := runner.Normalize(context.Background(), "", "/out/audio.mp3"); err == nil {
		t.Fatal("expected error for empty input path")
	}
}

func TestExtractSliceArgs(t *testing.T) {
	var captured [][]string
	stubCommand(t, "success", &captured)

	runner := New()
	if err := runner.ExtractSlice(context.Background(), "/in/full.mp3", "/out/part_0.mp3", 1500, 62750); err != nil {
		t.Fatalf("ExtractSlice returned error: %v", err)
	}

	args := strings.Join(captured[0], " ")
	if !strings.Contains(args, "-ss 1.500 -to 62.750 -c copy") {
		t.Fatalf("expected stream-copy slice args, got %s", args)
	}
}

func TestExtractSliceRejectsEmptyRange(t *testing.T) {
	runner := New()
	if err := runner.ExtractSlice(context.Background(), "/in/full.mp3", "/out/part.mp3", 2000, 2000); err == nil {
		t.Fatal("expected error for empty slice")
	}
	if err := runner.ExtractSlice(context.Background(), "/in/full.mp3", "/out/part.mp3", 2000, 1000); err == nil {
		t.Fatal("expected error for inverted slice")
	}
}

func TestExtractSliceReportsFailure(t *testing.T) {
	stubCommand(t, "failure", nil)

	runner := New()
	err := runner.ExtractSlice(context.Background(), "/in/full.mp3", "/out/part.mp3", 0, 1000)
	if err == nil {
		t.Fatal("expected error from failing ffmpeg")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected stderr in error, got %v", err)
	}
}

func TestConcatWritesClipList(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "combined.mp3")
	clips := []string{
		filepath.Join(dir, "clip_0.wav"),
		filepath.Join(dir, "clip_1.wav"),
	}

	var listContent string
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		for i, arg := range args {
			if arg == "-i" && i+1 < len(args) {
				if data, err := os.ReadFile(args[i+1]); err == nil {
					listContent = string(data)
				}
			}
		}
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "FFMPEG_HELPER_MODE=success")
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})

	if err := New().Concat(context.Background(), clips, output); err != nil {
		t.Fatalf("Concat returned error: %v", err)
	}

	if !strings.Contains(listContent, "file '"+clips[0]+"'") || !strings.Contains(listContent, "file '"+clips[1]+"'") {
		t.Fatalf("clip list missing entries: %q", listContent)
	}
	if strings.Index(listContent, clips[0]) > strings.Index(listContent, clips[1]) {
		t.Fatal("clip list out of order")
	}

	if entries, err := filepath.Glob(filepath.Join(dir, ".concat-*")); err == nil && len(entries) > 0 {
		t.Fatalf("expected clip list to be removed, found %v", entries)
	}
}

func TestConcatRequiresClips(t *testing.T) {
	runner := New()
	if err := runner.Concat(context.Background(), nil, "/out/combined.mp3"); err == nil {
		t.Fatal("expected error for empty clip list")
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	switch os.Getenv("FFMPEG_HELPER_MODE") {
	case "success":
		os.Exit(0)
	case "failure":
		fmt.Fprintln(os.Stderr, "boom")
		os.Exit(1)
	default:
		os.Exit(0)
	}
}
