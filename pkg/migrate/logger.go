package migrate

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/angelmondragon/gaspos-terminal/pkg/logger"
)

// UseLogger routes goose output (status tables, applied versions) through logg.
func UseLogger(ctx context.Context, logg *logger.Logger) {
	gooseMu.Lock()
	defer gooseMu.Unlock()
	if logg == nil {
		return
	}
	gooseLog = gooseLogger{ctx: ctx, logg: logg}
}

type gooseLogger struct {
	ctx  context.Context
	logg *logger.Logger
}

func (g gooseLogger) Printf(format string, v ...any) {
	g.logg.Info(g.ctx, strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (g gooseLogger) Fatalf(format string, v ...any) {
	g.logg.Error(g.ctx, "goose fatal", fmt.Errorf(format, v...))
	os.Exit(1)
}
