package flags

import (
	"testing"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/nervous/internal/config"
	"github.com/Paintersrp/nervous/internal/convert"
	"github.com/Paintersrp/nervous/internal/state"
)

func newTestState(t *testing.T) *state.State {
	t.Helper()

	home := t.TempDir()
	cfg := config.Default(home)
	cfg.DefaultFormat = "odt"

	s, err := state.NewStateFromConfig(home, cfg)
	if err != nil {
		t.Fatalf("NewStateFromConfig returned error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	AddFormat(cmd)
	AddOutput(cmd)
	AddConverter(cmd)
	AddTitle(cmd)
	return cmd
}

func TestHandleFormat(t *testing.T) {
	s := newTestState(t)

	cmd := newCmd()
	got, err := HandleFormat(cmd, s)
	if err != nil {
		t.Fatalf("HandleFormat returned error: %v", err)
	}
	if got != convert.ODT {
		t.Fatalf("expected configured default without a terminal, got %q", got)
	}

	cmd = newCmd()
	if err := cmd.Flags().Set("format", "HTML"); err != nil {
		t.Fatalf("failed to set format flag: %v", err)
	}
	if got, err := HandleFormat(cmd, s); err != nil || got != convert.HTML {
		t.Fatalf("expected html from flag, got %q (err=%v)", got, err)
	}

	cmd = newCmd()
	if err := cmd.Flags().Set("format", "rtf"); err != nil {
		t.Fatalf("failed to set format flag: %v", err)
	}
	if _, err := HandleFormat(cmd, s); err == nil {
		t.Fatalf("expected unknown format to fail")
	}
}

func TestHandleConverter(t *testing.T) {
	s := newTestState(t)

	cmd := newCmd()
	if err := HandleConverter(cmd, s); err != nil {
		t.Fatalf("HandleConverter without flag returned error: %v", err)
	}
	if s.Converter.Binary() != "pandoc" {
		t.Fatalf("expected default converter to stay, got %q", s.Converter.Binary())
	}

	if err := cmd.Flags().Set("converter", `my-pandoc "{input}" -o {output}`); err != nil {
		t.Fatalf("failed to set converter flag: %v", err)
	}
	if err := HandleConverter(cmd, s); err != nil {
		t.Fatalf("HandleConverter returned error: %v", err)
	}
	if s.Converter.Binary() != "my-pandoc" {
		t.Fatalf("expected converter override, got %q", s.Converter.Binary())
	}
	if got := s.Config.Converter.Args; len(got) != 3 || got[0] != "{input}" {
		t.Fatalf("unexpected converter args: %v", got)
	}
}

func TestHandleTitleAndOutput(t *testing.T) {
	cmd := newCmd()

	if title, _ := HandleTitle(cmd, "/notes/weekly.md"); title != "weekly" {
		t.Fatalf("expected title from path, got %q", title)
	}
	if err := cmd.Flags().Set("title", "  Weekly Review "); err != nil {
		t.Fatalf("failed to set title flag: %v", err)
	}
	if title, _ := HandleTitle(cmd, "/notes/weekly.md"); title != "Weekly Review" {
		t.Fatalf("expected trimmed flag title, got %q", title)
	}

	if err := cmd.Flags().Set("output", " out/ "); err != nil {
		t.Fatalf("failed to set output flag: %v", err)
	}
	if out, _ := HandleOutput(cmd); out != "out/" {
		t.Fatalf("expected trimmed output, got %q", out)
	}
}
