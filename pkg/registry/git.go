package registry

import (
	"bytes"
	"os/exec"
	"strings"

	"github.com/stenciltools/stencil/pkg/errors"
	"github.com/stenciltools/stencil/pkg/logging"
)

// GitRunner performs the one git operation the registry needs. It is
// an interface so tests can substitute a runner that copies fixture
// directories instead of touching the network.
type GitRunner interface {
	// CloneShallow clones url at depth 1 into dir, which exists and is
	// empty.
	CloneShallow(url, dir string) error
}

// ExecGit shells out to the system git binary.
type ExecGit struct{}

// CloneShallow implements GitRunner.
func (ExecGit) CloneShallow(url, dir string) error {
	log := logging.GetLogger("registry.git")
	log.Debug().Str("url", url).Str("dir", dir).Msg("Cloning package source")

	cmd := exec.Command("git", "clone", "--depth", "1", "--quiet", url, dir)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return errors.Newf(errors.ErrClone, "git clone of %s failed: %s", url, detail)
	}
	return nil
}
