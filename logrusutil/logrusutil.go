/*
Copyright 2025 The fgp Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package logrusutil implements some helpers for using logrus
package logrusutil

import (
	"github.com/sirupsen/logrus"

	"github.com/carrotRakko/github-finest-grained-permission-proxy/secretutil"
)

// DefaultFieldsFormatter wraps another logrus.Formatter, injecting
// DefaultFields into each Format() call, existing fields are preserved
// if they have the same key
type DefaultFieldsFormatter struct {
	WrappedFormatter logrus.Formatter
	DefaultFields    logrus.Fields
}

// ComponentInit sets up the default logrus formatter identifying this
// component.
func ComponentInit(component string) {
	logrus.SetFormatter(&DefaultFieldsFormatter{
		WrappedFormatter: &logrus.JSONFormatter{},
		DefaultFields:    logrus.Fields{"component": component},
	})
}

// Format implements logrus.Formatter's Format. We allocate a new Fields
// map in order to not modify the caller's Entry, as that is not a thread
// safe operation.
func (d *DefaultFieldsFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	wrapped := d.WrappedFormatter
	if wrapped == nil {
		wrapped = &logrus.JSONFormatter{}
	}
	data := make(logrus.Fields, len(entry.Data)+len(d.DefaultFields))
	for k, v := range d.DefaultFields {
		data[k] = v
	}
	for k, v := range entry.Data {
		data[k] = v
	}
	return wrapped.Format(&logrus.Entry{
		Logger:  entry.Logger,
		Data:    data,
		Time:    entry.Time,
		Level:   entry.Level,
		Message: entry.Message,
	})
}

// CensoringFormatter censors the fully formatted log line before it is
// written, so a token that sneaks into a message or field never reaches
// the log output.
type CensoringFormatter struct {
	Delegate logrus.Formatter
	Censorer *secretutil.Censorer
}

func (f CensoringFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	raw, err := f.Delegate.Format(entry)
	if err != nil {
		return raw, err
	}
	f.Censorer.Censor(&raw)
	return raw, nil
}

// WrapWithCensoring installs a CensoringFormatter around the currently
// configured formatter.
func WrapWithCensoring(censorer *secretutil.Censorer) {
	logrus.SetFormatter(CensoringFormatter{
		Delegate: logrus.StandardLogger().Formatter,
		Censorer: censorer,
	})
}
