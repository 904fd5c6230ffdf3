package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"readalong/internal/config"
	"readalong/internal/store"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
data_dir = %q
library_dir = %q
staging_dir = %q
log_dir = %q

[logging]
level = "error"
`,
		filepath.Join(base, "data"),
		filepath.Join(base, "library"),
		filepath.Join(base, "staging"),
		filepath.Join(base, "logs"),
	)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{baseDir: base, configPath: configPath}
}

func (env *cliTestEnv) openStore(t *testing.T) *store.Store {
	t.Helper()
	cfg, _, _, err := config.Load(env.configPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

const testTranscript = `<paragraph>
Hi.
你好。
Bye.
再见。
</paragraph>
`

func TestCLIIngestAndListCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	transcript := filepath.Join(env.baseDir, "chapter1.txt")
	if err := os.WriteFile(transcript, []byte(testTranscript), 0o644); err != nil {
		t.Fatalf("write transcript: %v", err)
	}

	out, _, err := runCLI(t, []string{"ingest", "--book", "Stoner", "--article", "Chapter One", transcript}, env.configPath)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	requireContains(t, out, "Ingested article")
	requireContains(t, out, "2 sentence pairs")

	out, _, err = runCLI(t, []string{"books"}, env.configPath)
	if err != nil {
		t.Fatalf("books: %v", err)
	}
	requireContains(t, out, "Stoner")

	st := env.openStore(t)
	books, err := st.ListBooks(context.Background())
	if err != nil {
		t.Fatalf("ListBooks: %v", err)
	}
	if len(books) != 1 {
		t.Fatalf("expected one book, got %d", len(books))
	}

	out, _, err = runCLI(t, []string{"articles", fmt.Sprintf("%d", books[0].ID)}, env.configPath)
	if err != nil {
		t.Fatalf("articles: %v", err)
	}
	requireContains(t, out, "Chapter One")
	requireContains(t, out, "2")
}

func TestCLIIngestRequiresBookTitle(t *testing.T) {
	env := setupCLITestEnv(t)

	transcript := filepath.Join(env.baseDir, "chapter1.txt")
	if err := os.WriteFile(transcript, []byte(testTranscript), 0o644); err != nil {
		t.Fatalf("write transcript: %v", err)
	}

	if _, _, err := runCLI(t, []string{"ingest", "--article", "Chapter One", transcript}, env.configPath); err == nil {
		t.Fatal("expected error without --book")
	}
}

func TestCLIIngestDefaultsArticleTitleFromFileName(t *testing.T) {
	env := setupCLITestEnv(t)

	transcript := filepath.Join(env.baseDir, "chapter_one.txt")
	if err := os.WriteFile(transcript, []byte(testTranscript), 0o644); err != nil {
		t.Fatalf("write transcript: %v", err)
	}

	out, _, err := runCLI(t, []string{"ingest", "--book", "Stoner", transcript}, env.configPath)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	requireContains(t, out, `"Chapter One"`)
}

func TestCLIBooksEmptyLibrary(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"books"}, env.configPath)
	if err != nil {
		t.Fatalf("books: %v", err)
	}
	requireContains(t, out, "No books yet")
}

func TestCLIArticlesUnknownBook(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"articles", "404"}, env.configPath); err == nil {
		t.Fatal("expected error for unknown book")
	}
}

func TestCLIAlignRejectsBadArticleID(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"align", "forced", "zero"}, env.configPath); err == nil {
		t.Fatal("expected error for non-numeric article id")
	}
	if _, _, err := runCLI(t, []string{"split", "0"}, env.configPath); err == nil {
		t.Fatal("expected error for zero article id")
	}
}

func TestCLIStatusRendersSections(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "== Tools ==")
	requireContains(t, out, "== Directories ==")
	requireContains(t, out, "Data directory")
}
