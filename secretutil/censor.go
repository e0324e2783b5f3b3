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

// Package secretutil keeps configured tokens out of anything the proxy
// writes, log lines first of all.
package secretutil

import (
	"encoding/base64"
	"strings"

	"go4.org/bytereplacer"
)

// Censorer replaces known secrets in place with same-length runs of '*'.
// The secret set is fixed at construction; the credential catalog is
// immutable after startup so there is nothing to reload.
type Censorer struct {
	replacer *bytereplacer.Replacer
}

// NewCensorer builds a Censorer for the given secrets. Each secret is
// censored both in plaintext and in its base64 form, since git Basic auth
// carries the token base64-encoded.
func NewCensorer(secrets ...string) *Censorer {
	var replacements []string
	add := func(s string) {
		replacements = append(replacements, s, strings.Repeat("*", len(s)))
	}
	for _, secret := range secrets {
		secret = strings.TrimSpace(secret)
		if secret == "" {
			continue
		}
		add(secret)
		add(base64.StdEncoding.EncodeToString([]byte(secret)))
	}
	return &Censorer{replacer: bytereplacer.New(replacements...)}
}

// Censor removes registered secrets from the input. The replacements are
// the same size as what they replace, so the input is mutated in place and
// never grows.
func (c *Censorer) Censor(input *[]byte) {
	*input = c.replacer.Replace(*input)
}

// CensorString returns a censored copy of the input.
func (c *Censorer) CensorString(input string) string {
	b := []byte(input)
	c.Censor(&b)
	return string(b)
}
