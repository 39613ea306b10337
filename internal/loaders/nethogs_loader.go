package loaders

import (
	"path/filepath"

	"github.com/ALEYI17/InfraSight_traffic/internal/nethogs"
	"github.com/ALEYI17/InfraSight_traffic/pkg/logutil"
	"github.com/ALEYI17/InfraSight_traffic/pkg/types"
	"go.uber.org/zap"
)

// NethogsLoader reads nethogs_<i>.txt captures from a results directory.
type NethogsLoader struct {
	Dir      string
	ExecFile string
}

func NewNethogsLoader(dir, execFile string) *NethogsLoader {
	return &NethogsLoader{Dir: dir, ExecFile: execFile}
}

func (l *NethogsLoader) Path(iteration int) string {
	return filepath.Join(l.Dir, types.CaptureFile(iteration))
}

func (l *NethogsLoader) Load(iteration int) (*types.IterationSeries, error) {
	logger := logutil.GetLogger()

	path := l.Path(iteration)
	it, err := nethogs.ParseFile(path, iteration, l.ExecFile)
	if err != nil {
		return nil, err
	}

	logger.Info("Loaded capture",
		zap.Int("iteration", iteration),
		zap.String("path", path),
		zap.Int("participants", len(it.Participants)),
		zap.Int("samples", it.Len()),
		zap.Int("refreshes", it.Refreshes))
	return it, nil
}
