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

package web_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/awslabs/licexp/backend"
	"github.com/awslabs/licexp/cache"
	"github.com/awslabs/licexp/util/licenses"
	"github.com/awslabs/licexp/web"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	c := &cache.Cache{
		Logf: t.Logf,
		Store: &backend.Static{
			List: []*licenses.License{
				{Key: "mit", Name: "MIT License", SPDX: "MIT"},
				{Key: "apache-2.0", Aliases: []string{"Apache 2"}, SPDX: "Apache-2.0"},
				{Key: "gps-2.0-plus", Name: "GPL 2.0 or later"},
				{Key: "classpath-2.0", IsException: true},
			},
		},
	}
	if err := c.Init(); err != nil {
		t.Fatalf("init: %+v", err)
	}
	server := &web.Server{
		Program: "licexp",
		Version: "0.0.1",
		Logf:    t.Logf,
		Cache:   c,
		Tenant:  "acme",
	}
	return server.Router()
}

func post(t *testing.T, router *gin.Engine, path, body string) (int, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if _, err := uuid.Parse(w.Header().Get(web.RequestIDHeader)); err != nil {
		t.Errorf("invalid request id: %+v", err)
	}
	result := make(map[string]interface{})
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode %s: %+v", w.Body.String(), err)
	}
	if result["request_id"] != w.Header().Get(web.RequestIDHeader) {
		t.Errorf("request id in body does not match the header")
	}
	delete(result, "request_id")
	return w.Code, result
}

func TestAPI(t *testing.T) {
	router := testRouter(t)
	tests := []struct {
		path string
		body string
		code int
		exp  map[string]interface{}
	}{
		{
			path: "/api/normalize",
			body: `{"expression": "mit or apache 2"}`,
			code: http.StatusOK,
			exp:  map[string]interface{}{"normalized": "mit OR apache-2.0"},
		},
		{
			path: "/api/normalize",
			body: `{"expression": "GPL 2.0 or later with classpath-2.0", "template": "spdx"}`,
			code: http.StatusOK,
			exp:  map[string]interface{}{"normalized": "LicenseRef-gps-2.0-plus WITH LicenseRef-classpath-2.0"},
		},
		{
			path: "/api/normalize",
			body: `{"expression": "mit or nope", "include_available": true, "keys": ["mit", "apache-2.0"]}`,
			code: http.StatusUnprocessableEntity,
			exp: map[string]interface{}{
				"error":     "Unknown license key(s): nope",
				"available": []interface{}{"apache-2.0", "mit"},
			},
		},
		{
			path: "/api/normalize",
			body: `{"expression": "mit", "template": "html"}`,
			code: http.StatusBadRequest,
		},
		{
			path: "/api/normalize",
			body: `{}`,
			code: http.StatusBadRequest,
		},
		{
			path: "/api/spdx",
			body: `{"expression": "MIT License and apache 2"}`,
			code: http.StatusOK,
			exp:  map[string]interface{}{"spdx": "MIT AND Apache-2.0"},
		},
		{
			path: "/api/equivalent",
			body: `{"a": "mit or apache 2", "b": "apache-2.0 OR mit"}`,
			code: http.StatusOK,
			exp:  map[string]interface{}{"equivalent": true},
		},
		{
			path: "/api/equivalent",
			body: `{"a": "mit", "b": "(mit"}`,
			code: http.StatusUnprocessableEntity,
		},
		{
			path: "/api/combine",
			body: `{"expressions": ["mit", "mit AND apache-2.0"], "simplify": true}`,
			code: http.StatusOK,
			exp:  map[string]interface{}{"expression": "mit AND apache-2.0"},
		},
		{
			path: "/api/combine",
			body: `{"expressions": []}`,
			code: http.StatusBadRequest,
		},
	}
	for i, test := range tests {
		code, result := post(t, router, test.path, test.body)
		if code != test.code {
			t.Errorf("test #%d: exp: %d", i, test.code)
			t.Errorf("test #%d: got: %d (%v)", i, code, result)
			continue
		}
		if test.exp == nil {
			if _, exists := result["error"]; !exists {
				t.Errorf("test #%d: expected an error message", i)
			}
			continue
		}
		if diff := cmp.Diff(test.exp, result); diff != "" {
			t.Errorf("test #%d: unexpected body (-want +got):\n%s", i, diff)
		}
	}
}

func TestPing(t *testing.T) {
	router := testRouter(t)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Code != http.StatusOK {
		t.Errorf("got: %d", w.Code)
	}
}

func TestForm(t *testing.T) {
	router := testRouter(t)
	form := url.Values{}
	form.Set("expression", "mit or apache 2\n\nnope\n")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("got: %d", w.Code)
		return
	}
	body := w.Body.String()
	for _, s := range []string{"mit OR apache-2.0", "Unknown license key(s): nope", "profile <i>default</i>"} {
		if !strings.Contains(body, s) {
			t.Errorf("body does not contain %q", s)
		}
	}

	form.Set("expression", "  ")
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	router.ServeHTTP(w, req)
	if !strings.Contains(w.Body.String(), "empty request") {
		t.Errorf("expected an empty request error")
	}
}

func TestMetrics(t *testing.T) {
	router := testRouter(t)
	post(t, router, "/api/spdx", `{"expression": "mit"}`)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := w.Body.String()
	for _, s := range []string{
		`licexp_http_requests_total{path="/api/spdx",code="200"} 1`,
		`licexp_cache_misses_total 1`,
	} {
		if !strings.Contains(body, s) {
			t.Errorf("metrics do not contain %q", s)
		}
	}
}
