package logging

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// New returns a text logger writing to out at the given level. Level names
// are those understood by logrus.ParseLevel.
func New(out io.Writer, level string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	return logger, nil
}
