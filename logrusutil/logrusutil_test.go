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

package logrusutil

import (
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/carrotRakko/github-finest-grained-permission-proxy/secretutil"
)

func TestDefaultFieldsFormatter(t *testing.T) {
	formatter := &DefaultFieldsFormatter{
		WrappedFormatter: &logrus.JSONFormatter{},
		DefaultFields:    logrus.Fields{"component": "fgp"},
	}
	entry := &logrus.Entry{
		Message: "hello",
		Data:    logrus.Fields{"action": "metadata:read"},
	}
	out, err := formatter.Format(entry)
	if err != nil {
		t.Fatalf("Format() = %v", err)
	}
	for _, want := range []string{`"component":"fgp"`, `"action":"metadata:read"`, `"msg":"hello"`} {
		if !strings.Contains(string(out), want) {
			t.Errorf("formatted entry %s missing %s", out, want)
		}
	}
}

func TestDefaultFieldsFormatterDoesNotMutateEntry(t *testing.T) {
	formatter := &DefaultFieldsFormatter{DefaultFields: logrus.Fields{"component": "fgp"}}
	entry := &logrus.Entry{Data: logrus.Fields{}}
	if _, err := formatter.Format(entry); err != nil {
		t.Fatalf("Format() = %v", err)
	}
	if _, ok := entry.Data["component"]; ok {
		t.Error("formatter mutated the caller's entry")
	}
}

func TestCensoringFormatter(t *testing.T) {
	formatter := CensoringFormatter{
		Delegate: &logrus.JSONFormatter{},
		Censorer: secretutil.NewCensorer("ghp_supersecret"),
	}
	entry := &logrus.Entry{Message: "using token ghp_supersecret for acme/foo"}
	out, err := formatter.Format(entry)
	if err != nil {
		t.Fatalf("Format() = %v", err)
	}
	if strings.Contains(string(out), "ghp_supersecret") {
		t.Errorf("formatted entry still contains the token: %s", out)
	}
	if !strings.Contains(string(out), "acme/foo") {
		t.Errorf("formatted entry lost unrelated content: %s", out)
	}
}
