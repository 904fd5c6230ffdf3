package deps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

var commandContext = exec.CommandContext

const importProbeTimeout = 20 * time.Second

// CheckAlignerModule reports whether the configured Python interpreter can
// import the forced-aligner module. A present interpreter with a missing
// module is the common misconfiguration, so the two are checked separately.
func CheckAlignerModule(ctx context.Context, pythonCommand, module string) Status {
	result := Status{
		Name:        "Aligner",
		Description: fmt.Sprintf("Python module %q for forced alignment", module),
		Optional:    true,
	}

	python := strings.TrimSpace(pythonCommand)
	if python == "" || module == "" {
		result.Detail = "aligner not configured"
		return result
	}

	resolved, err := exec.LookPath(python)
	if err != nil {
		result.Command = python
		result.Detail = fmt.Sprintf("binary %q not found", python)
		return result
	}
	result.Command = resolved

	ctx, cancel := context.WithTimeout(ctx, importProbeTimeout)
	defer cancel()
	cmd := commandContext(ctx, resolved, "-c", "import "+module)
	if output, err := cmd.CombinedOutput(); err != nil {
		result.Detail = fmt.Sprintf("module %q not importable: %s", module, firstLine(output))
		return result
	}

	result.Available = true
	return result
}

func firstLine(output []byte) string {
	text := strings.TrimSpace(string(output))
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	if text == "" {
		return "import failed"
	}
	return text
}
