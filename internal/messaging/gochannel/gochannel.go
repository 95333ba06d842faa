package gochannel

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/sirupsen/logrus"
)

// NewPubSub creates the in-process publish/subscribe bus the write-behind
// persistence rides on. Publishing never blocks the mutating caller as long
// as the buffer has room.
func NewPubSub(log *logrus.Logger) *gochannel.GoChannel {
	return gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		NewLoggerAdapter(log),
	)
}

// loggerAdapter bridges Watermill's logging interface onto logrus.
type loggerAdapter struct {
	entry *logrus.Entry
}

// NewLoggerAdapter wraps a logrus logger as a watermill.LoggerAdapter.
func NewLoggerAdapter(log *logrus.Logger) watermill.LoggerAdapter {
	return &loggerAdapter{entry: logrus.NewEntry(log)}
}

func (l *loggerAdapter) Error(msg string, err error, fields watermill.LogFields) {
	l.entry.WithFields(logrus.Fields(fields)).WithError(err).Error(msg)
}

func (l *loggerAdapter) Info(msg string, fields watermill.LogFields) {
	l.entry.WithFields(logrus.Fields(fields)).Info(msg)
}

func (l *loggerAdapter) Debug(msg string, fields watermill.LogFields) {
	l.entry.WithFields(logrus.Fields(fields)).Debug(msg)
}

func (l *loggerAdapter) Trace(msg string, fields watermill.LogFields) {
	l.entry.WithFields(logrus.Fields(fields)).Trace(msg)
}

func (l *loggerAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &loggerAdapter{entry: l.entry.WithFields(logrus.Fields(fields))}
}
