package membuf

import (
	"go.uber.org/zap"
)

var logger = zap.NewNop()

// UseLogger set the logger used for fault reporting
func UseLogger(zapLogger *zap.Logger) {
	logger = zapLogger
}
