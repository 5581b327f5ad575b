package utils

import (
	"strings"

	"github.com/sirupsen/logrus"
)

func AddToLogMessage(logMessagesBuilder *strings.Builder, strToAdd string) {
	logMessagesBuilder.WriteString(strToAdd)
	logMessagesBuilder.WriteString(";")
	logMessagesBuilder.WriteString("\n")
}

// FlushLogMessage writes the accumulated request log as a single entry.
func FlushLogMessage(logger logrus.FieldLogger, logMessagesBuilder *strings.Builder) {
	if logger == nil || logMessagesBuilder.Len() == 0 {
		return
	}
	logger.Info(strings.TrimRight(logMessagesBuilder.String(), "\n"))
}
