// Copyright Amazon.com Inc or its affiliates and the project contributors
// Written by James Shubin <purple@amazon.com> and the project contributors
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.
//
// We will never require a CLA to submit a patch. All contributions follow the
// `inbound == outbound` rule.
//
// This is not an official Amazon product. Amazon does not offer support for
// this project.
//
// SPDX-License-Identifier: Apache-2.0

package expression

import (
	"fmt"
	"io"
	"strings"

	"github.com/valyala/fasttemplate"
)

const (
	// DefaultTemplate renders each known symbol as its canonical key. This
	// is the form that is stored and compared.
	DefaultTemplate = "{symbol.key}"

	// SPDXTemplate renders each known symbol as its SPDX identifier.
	SPDXTemplate = "{symbol.spdx_id}"

	startTag = "{"
	endTag   = "}"
)

// Render returns the canonical string for the tree. The template decides what a
// known symbol becomes, and may use the {symbol.key}, {symbol.spdx_id} and
// {symbol.name} tags. Unknown symbols are written as they appeared in the
// input. Operators are always upper case, and parentheses are only added
// around AND and OR groups that are operands of another operator.
func Render(expr Expression, template string) (string, error) {
	if expr == nil {
		return "", nil
	}
	if template == "" {
		template = DefaultTemplate
	}
	t, err := fasttemplate.NewTemplate(template, startTag, endTag)
	if err != nil {
		return "", fmt.Errorf("invalid template %q: %v", template, err)
	}
	r := &renderer{
		template: t,
		cache:    make(map[*LicenseSymbol]string),
	}
	b := &strings.Builder{}
	if err := r.render(b, expr); err != nil {
		return "", err
	}
	return b.String(), nil
}

type renderer struct {
	template *fasttemplate.Template

	// cache holds the rendered form of each symbol seen so far
	cache map[*LicenseSymbol]string
}

func (obj *renderer) render(b *strings.Builder, expr Expression) error {
	switch x := expr.(type) {
	case *Symbol:
		s, err := obj.symbol(x)
		if err != nil {
			return err
		}
		b.WriteString(s)
		return nil

	case *And:
		return obj.group(b, x.Args, " AND ")

	case *Or:
		return obj.group(b, x.Args, " OR ")

	case *With:
		if err := obj.operand(b, x.License, true); err != nil {
			return err
		}
		b.WriteString(" WITH ")
		return obj.operand(b, x.Exception, true)
	}
	return fmt.Errorf("unexpected expression type %T", expr)
}

func (obj *renderer) group(b *strings.Builder, args []Expression, sep string) error {
	for i, arg := range args {
		if i > 0 {
			b.WriteString(sep)
		}
		if err := obj.operand(b, arg, false); err != nil {
			return err
		}
	}
	return nil
}

// operand renders a child of an operator, in parentheses if it's a group.
func (obj *renderer) operand(b *strings.Builder, expr Expression, inWith bool) error {
	wrap := false
	switch expr.(type) {
	case *And, *Or:
		wrap = true
	case *With:
		wrap = inWith
	}
	if !wrap {
		return obj.render(b, expr)
	}
	b.WriteString("(")
	if err := obj.render(b, expr); err != nil {
		return err
	}
	b.WriteString(")")
	return nil
}

func (obj *renderer) symbol(x *Symbol) (string, error) {
	if x.License == nil {
		return x.Text, nil
	}
	if s, exists := obj.cache[x.License]; exists {
		return s, nil
	}
	s, err := obj.template.ExecuteFuncStringWithErr(func(w io.Writer, tag string) (int, error) {
		switch strings.TrimSpace(tag) {
		case "symbol.key":
			return w.Write([]byte(x.License.Key))
		case "symbol.spdx_id":
			return w.Write([]byte(x.License.SPDX()))
		case "symbol.name":
			if x.License.Name == "" {
				return w.Write([]byte(x.License.Key))
			}
			return w.Write([]byte(x.License.Name))
		}
		return 0, fmt.Errorf("unknown template tag: %s", tag)
	})
	if err != nil {
		return "", err
	}
	obj.cache[x.License] = s
	return s, nil
}

// String renders with the default template.
func (obj *Symbol) String() string { return mustRender(obj) }

// String renders with the default template.
func (obj *And) String() string { return mustRender(obj) }

// String renders with the default template.
func (obj *Or) String() string { return mustRender(obj) }

// String renders with the default template.
func (obj *With) String() string { return mustRender(obj) }

func mustRender(expr Expression) string {
	s, err := Render(expr, DefaultTemplate)
	if err != nil {
		// the default template only uses known tags
		panic(fmt.Sprintf("render: %v", err))
	}
	return s
}
