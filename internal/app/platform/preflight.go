package platform

import (
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/h44z/wg-agent/internal/config"
)

// Preflight checks that the required tools are installed and warns if the agent lacks privileges.
type Preflight struct {
	cfg      config.Backend
	platform string
	lookPath func(file string) (string, error)
	euid     func() int
}

func NewPreflight(cfg config.Backend, platform string) *Preflight {
	return &Preflight{
		cfg:      cfg,
		platform: platform,
		lookPath: exec.LookPath,
		euid:     effectiveUid,
	}
}

// RequiredTools returns the binaries used by the selected platform and link driver.
func (p *Preflight) RequiredTools() []string {
	tools := []string{p.cfg.WgBinary}
	switch p.platform {
	case config.PlatformWindows:
		tools = append(tools, p.cfg.WireGuardBinary)
	default:
		tools = append(tools, p.cfg.SystemctlBinary)
		if p.cfg.LinkDriver != config.LinkDriverNetlink {
			tools = append(tools, p.cfg.IpBinary)
		}
	}
	if p.cfg.UseSudo {
		tools = append(tools, "sudo")
	}
	return tools
}

// Run returns an error listing all missing tools.
func (p *Preflight) Run() error {
	missing := make([]string, 0)
	for _, tool := range p.RequiredTools() {
		if path, err := p.lookPath(tool); err != nil {
			missing = append(missing, tool)
		} else {
			slog.Debug("found required tool", "tool", tool, "path", path)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required tools: %v", missing)
	}

	if uid := p.euid(); uid > 0 && !p.cfg.UseSudo {
		slog.Warn("agent is not running as root and sudo is disabled, interface changes will most likely fail",
			"uid", uid)
	}

	return nil
}
