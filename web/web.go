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

// Package web serves the expression engine over http, both as an html form and
// as a small json api.
package web

import (
	"context"
	"errors"
	"fmt"
	"html"
	"html/template"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/awslabs/licexp/cache"
	"github.com/awslabs/licexp/expression"
	"github.com/awslabs/licexp/interfaces"
	"github.com/awslabs/licexp/lib"
	"github.com/awslabs/licexp/util"
	"github.com/awslabs/licexp/util/errwrap"

	"github.com/VictoriaMetrics/metrics"
	"github.com/gin-contrib/multitemplate"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// CookieNameProfiles is the name of the cookie used to store profiles
	// settings.
	CookieNameProfiles = "licexp_profiles"

	// RequestIDHeader is the response header that carries the request id.
	RequestIDHeader = "X-Request-Id"

	displaySummary = true

	serverAddr = ":8000"

	requestIDKey = "request_id"
)

var indexTemplate = `
<html>
<head>
<title>{{ .program }}, version: {{ .version }}</title>
<style>
textarea {
	width: 80%;
	box-sizing: border-box;
	border: 2px solid #ccc;
	border-radius: 4px;
	font-size: 16px;
	font-family: monospace;
	padding: 12px 20px 12px 20px;
}

textarea:focus {
	background-color: lightblue;
}

.submit {
	background-color: white;
	color: black;
	box-sizing: border-box;
	border: 2px solid #ccc;
	border-radius: 4px;
	font-size: 16px;
}

.submit:hover {
	background-color: #008CBA;
	color: white;
}

#error {
	border-collapse: collapse;
	width: 80%;
	margin-left: auto;
	margin-right: auto;
	background-color: #ff0000;
}
#error td, #error th {
	border: 1px solid #ddd;
	padding: 8px;
}
#report {
	border-collapse: collapse;
	width: 80%;
	margin-left: auto;
	margin-right: auto;
}
#report td, #report th {
	border: 1px solid #ddd;
	padding: 8px;
}
#report tr:nth-child(even){background-color: #f2f2f2;}
#report tr:hover {background-color: #ddd;}
#report th {
	padding-top: 12px;
	padding-bottom: 12px;
	text-align: left;
	background-color: #042ea9;
	color: white;
}
#summary {
	background-color: #ffffff;
}
#summary th {
	padding-top: 6px;
	padding-bottom: 6px;
	text-align: left;
	background-color: #4a90d9;
	color: white;
}
</style>
</head>
<body>
<div style="text-align: center;">
<h1 style="color:#042ea9; text-align: center;"><a href="/">{{ .program }}</a></h1>
<form action="/" method="POST">
<div id="forminput" style="text-align: center;">
	<textarea name="expression" rows="4" placeholder="one license expression per line">{{ .expression }}</textarea>
</div>
<table id="optionstable"><tr><td>tenant:</td><td>
	<input type="text" name="tenant" value="{{ .tenant }}"></input>
</td>
{{ $pkeys := sortedmapkeys .profiles }}
{{ $profiles := .profiles }}
{{ if $pkeys }}
<td>profiles:</td><td>
	<select multiple name="profile" size="1">
{{ range $pkeys }}
	<option id="{{ . }}"{{ if ischecked $profiles . }} selected{{ end }}>{{ . }}</option>
{{ end }}
	</select>
</td>
{{ end }}
<td><input class="submit" type="submit" value="normalize"></td>
</tr></table>
</form>
</div>
{{ .body }}
<br />
<div style="text-align: center;">
<pre style="color:lightgrey;">
{{ .program }} {{ .version }}
</pre>
</div>
</body>
</html>
`

var templateName = "index"

var funcMap = map[string]interface{}{
	"sortedmapkeys": func(m map[string]bool) ([]string, error) {
		l := []string{}
		for k := range m {
			l = append(l, k)
		}
		sort.Strings(l)

		return l, nil
	},
	"ischecked": func(m map[string]bool, key string) (bool, error) {
		val, ok := m[key]
		if !ok {
			return false, nil
		}
		return val, nil
	},
}

func init() {
	indexTemplate = strings.TrimLeft(indexTemplate, "\n") // clean up the \n
	if _, err := template.New(templateName).Funcs(funcMap).Parse(indexTemplate); err != nil {
		panic(fmt.Sprintf("could not parse template: %+v", err))
	}
}

// Server is our web server struct.
type Server struct {
	Program string
	Version string
	Debug   bool
	Logf    func(format string, v ...interface{})

	// Cache provides the vocabulary of each tenant. It must be initialized.
	Cache *cache.Cache

	// Tenant is used for requests that don't specify one.
	Tenant string

	// Profiles is the list of profiles to allow. Either the names from
	// ~/.config/licexp/profiles/<name>.json or full paths.
	Profiles []string

	// Listen is the ip/port combination for the server to listen on. If it
	// is empty, then a default is used. For example, you might specify:
	// "127.0.0.1:8000" or just ":8000".
	Listen string

	// metrics holds the http counters.
	metrics *metrics.Set
}

// Run starts the server and blocks until the context is cancelled.
func (obj *Server) Run(ctx context.Context) error {
	listen := serverAddr
	if obj.Listen != "" {
		listen = obj.Listen
	}

	router := obj.Router()

	if strings.HasPrefix(listen, ":") {
		p := strings.TrimPrefix(listen, ":")
		port, err := strconv.Atoi(p)
		if err != nil { // invalid port
			return err
		}
		obj.Logf("server: startup on port %d, test at: http://localhost%s/", port, listen)
	} else {
		obj.Logf("server: startup on http://%s/", listen)
	}

	server := &http.Server{
		Addr:    listen,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		if err := server.Close(); err != nil {
			obj.Logf("server: closed badly: %+v", err)
		}
	}()

	reterr := server.ListenAndServe()
	if reterr == http.ErrServerClosed {
		return nil
	}

	return errwrap.Wrapf(reterr, "server closed badly")
}

// Router builds the gin engine with every route. It's exported so that it can
// be tested without listening on a port.
func (obj *Server) Router() *gin.Engine {
	if !obj.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	obj.metrics = metrics.NewSet()

	router := gin.New()
	router.Use(gin.Recovery())

	logWriter := &LogWriter{
		Logf: obj.Logf,
	}
	router.Use(gin.LoggerWithWriter(logWriter))
	router.Use(obj.requestID)
	router.Use(obj.count)

	renderer := multitemplate.NewRenderer()
	renderer.AddFromStringsFuncs(templateName, funcMap, indexTemplate)
	router.HTMLRender = renderer

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/index.html")
	})

	router.GET("/index.html", func(c *gin.Context) {
		c.HTML(http.StatusOK, templateName, obj.page(c, nil))
	})

	router.POST("/", func(c *gin.Context) {
		body, err := obj.form(c)
		if err != nil {
			e := `<table id="error">`
			x := html.EscapeString(err.Error())
			e += fmt.Sprintf(`<tr><th style="text-align: center"><i>%s</i></th></tr>`, x)
			e += "</table>"
			body = e
		}
		h := obj.page(c, gin.H{
			"body":       template.HTML(body), // avoid escaping the html!
			"expression": c.PostForm("expression"),
			"tenant":     c.PostForm("tenant"),
		})
		c.HTML(http.StatusOK, templateName, h)
	})

	// add a ping endpoint for load balancers/etc
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "we're alive!",
		})
	})

	router.GET("/metrics", func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.Status(http.StatusOK)
		obj.metrics.WritePrometheus(c.Writer)
		if obj.Cache != nil && obj.Cache.Metrics != nil {
			obj.Cache.Metrics.WritePrometheus(c.Writer)
		}
		metrics.WriteProcessMetrics(c.Writer)
	})

	api := router.Group("/api")
	api.POST("/normalize", obj.normalize)
	api.POST("/spdx", obj.spdx)
	api.POST("/equivalent", obj.equivalent)
	api.POST("/combine", obj.combine)

	return router
}

// page returns the data for the index template, with the extra values added.
func (obj *Server) page(c *gin.Context, extra gin.H) gin.H {
	h := gin.H{
		"program":    obj.Program,
		"version":    obj.Version,
		"status":     "success",
		"profiles":   obj.getCookieProfiles(c),
		"expression": "",
		"tenant":     obj.Tenant,
		"body":       template.HTML(""),
	}
	for k, v := range extra {
		h[k] = v
	}
	return h
}

// form runs the expressions of the html form and returns the html report.
func (obj *Server) form(c *gin.Context) (string, error) {
	args := []string{}
	for _, x := range strings.Split(c.PostForm("expression"), "\n") {
		if x = strings.TrimSpace(x); x != "" {
			args = append(args, x)
		}
	}
	if len(args) == 0 {
		return "", fmt.Errorf("empty request")
	}

	pvalues := url.Values{}
	profiles := []string{}
	profilesPost := c.PostFormArray("profile")
	for _, x := range obj.Profiles {
		if util.StrInList(x, profilesPost) {
			profiles = append(profiles, x)
			pvalues.Set(x, "true")
		}
	}

	maxAge := 2147483647 // 2^31 - 1 = 2147483647 = 2038-01-19 04:14:07
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     CookieNameProfiles,
		Value:    url.QueryEscape(pvalues.Encode()),
		MaxAge:   maxAge,
		Path:     "/",
		Secure:   false,
		HttpOnly: true,
	})

	m := &lib.Main{
		Program: obj.Program,
		Version: obj.Version,
		Debug:   obj.Debug,
		Logf: func(format string, v ...interface{}) {
			obj.Logf("lib: "+format, v...)
		},
		Args:     args,
		Cache:    obj.Cache,
		Tenant:   obj.tenant(c.PostForm("tenant")),
		Profiles: profiles,
	}
	output, err := m.Run(c.Request.Context())
	if err != nil {
		return "", err
	}

	return ReturnOutputHtmlBody(output)
}

// NormalizeRequest is the body of /api/normalize.
type NormalizeRequest struct {
	Tenant     string `json:"tenant"`
	Expression string `json:"expression" binding:"required"`

	// Keys restricts the vocabulary to these licenses.
	Keys []string `json:"keys" binding:"omitempty,dive,required"`

	// Unknown allows symbols which are not in the vocabulary.
	Unknown bool `json:"unknown"`

	Strict           bool   `json:"strict"`
	Simple           bool   `json:"simple"`
	IncludeAvailable bool   `json:"include_available"`
	Template         string `json:"template" binding:"omitempty,oneof=key spdx"`
}

// ExpressionRequest is the body of /api/spdx.
type ExpressionRequest struct {
	Tenant     string `json:"tenant"`
	Expression string `json:"expression" binding:"required"`
}

// EquivalentRequest is the body of /api/equivalent.
type EquivalentRequest struct {
	Tenant string `json:"tenant"`
	A      string `json:"a" binding:"required"`
	B      string `json:"b" binding:"required"`
}

// CombineRequest is the body of /api/combine.
type CombineRequest struct {
	Tenant      string   `json:"tenant"`
	Expressions []string `json:"expressions" binding:"required,min=1"`
	Simplify    bool     `json:"simplify"`
}

func (obj *Server) normalize(c *gin.Context) {
	var req NormalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		obj.fail(c, http.StatusBadRequest, err)
		return
	}
	licensing, err := obj.licensing(c, req.Tenant, req.Keys)
	if err != nil {
		obj.failStore(c, err)
		return
	}
	opts := &expression.NormalizeOptions{
		ParseOptions: expression.ParseOptions{
			ValidateKnown:  !req.Unknown,
			ValidateStrict: req.Strict,
			Simple:         req.Simple,
		},
		IncludeAvailable: req.IncludeAvailable,
	}
	if req.Template == "spdx" {
		opts.Template = expression.SPDXTemplate
	}

	normalized, err := expression.NormalizeAndValidate(req.Expression, licensing, opts)
	if err != nil {
		obj.fail(c, http.StatusUnprocessableEntity, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		requestIDKey: c.GetString(requestIDKey),
		"normalized": normalized,
	})
}

func (obj *Server) spdx(c *gin.Context) {
	var req ExpressionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		obj.fail(c, http.StatusBadRequest, err)
		return
	}
	licensing, err := obj.licensing(c, req.Tenant, nil)
	if err != nil {
		obj.failStore(c, err)
		return
	}
	s, err := expression.ExpressionAsSPDX(req.Expression, licensing)
	if err != nil {
		obj.fail(c, http.StatusUnprocessableEntity, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		requestIDKey: c.GetString(requestIDKey),
		"spdx":       s,
	})
}

func (obj *Server) equivalent(c *gin.Context) {
	var req EquivalentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		obj.fail(c, http.StatusBadRequest, err)
		return
	}
	licensing, err := obj.licensing(c, req.Tenant, nil)
	if err != nil {
		obj.failStore(c, err)
		return
	}
	trees := []expression.Expression{}
	for _, x := range []string{req.A, req.B} {
		tree, err := expression.Parse(x, licensing, expression.ParseOptions{})
		if err != nil {
			obj.fail(c, http.StatusUnprocessableEntity, err)
			return
		}
		trees = append(trees, tree)
	}
	c.JSON(http.StatusOK, gin.H{
		requestIDKey: c.GetString(requestIDKey),
		"equivalent": expression.IsEquivalent(trees[0], trees[1]),
	})
}

func (obj *Server) combine(c *gin.Context) {
	var req CombineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		obj.fail(c, http.StatusBadRequest, err)
		return
	}
	licensing, err := obj.licensing(c, req.Tenant, nil)
	if err != nil {
		obj.failStore(c, err)
		return
	}
	s, err := expression.CombineLicenseExpressions(req.Expressions, req.Simplify, licensing)
	if err != nil {
		obj.fail(c, http.StatusUnprocessableEntity, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		requestIDKey: c.GetString(requestIDKey),
		"expression": s,
	})
}

func (obj *Server) tenant(tenant string) string {
	if tenant = strings.TrimSpace(tenant); tenant != "" {
		return tenant
	}
	return obj.Tenant
}

func (obj *Server) licensing(c *gin.Context, tenant string, keys []string) (*expression.Licensing, error) {
	if obj.Cache == nil {
		return nil, fmt.Errorf("no cache")
	}
	return obj.Cache.GetOrBuild(c.Request.Context(), obj.tenant(tenant), keys)
}

// failStore reports a vocabulary that could not be obtained.
func (obj *Server) failStore(c *gin.Context, err error) {
	switch {
	case errors.Is(err, interfaces.ErrUnknownTenant):
		obj.fail(c, http.StatusNotFound, err)
	case errors.Is(err, interfaces.ErrEmptyTenant):
		obj.fail(c, http.StatusBadRequest, err)
	default:
		obj.Logf("store: %+v", err)
		obj.fail(c, http.StatusInternalServerError, err)
	}
}

// fail writes the error as json. A validation error also carries the list of
// available licenses if it has one.
func (obj *Server) fail(c *gin.Context, code int, err error) {
	h := gin.H{
		requestIDKey: c.GetString(requestIDKey),
		"error":      err.Error(),
	}
	var e *expression.ValidationError
	if errors.As(err, &e) {
		h["error"] = e.Err.Error()
		if len(e.Available) > 0 {
			h["available"] = e.Available
		}
	}
	c.AbortWithStatusJSON(code, h)
}

// requestID tags every request with a unique id.
func (obj *Server) requestID(c *gin.Context) {
	id := uuid.New().String()
	c.Set(requestIDKey, id)
	c.Header(RequestIDHeader, id)
	c.Next()
}

// count adds up the requests by route and status.
func (obj *Server) count(c *gin.Context) {
	c.Next()
	path := c.FullPath()
	if path == "" {
		path = "unknown"
	}
	name := fmt.Sprintf(`licexp_http_requests_total{path=%q,code="%d"}`, path, c.Writer.Status())
	obj.metrics.GetOrCreateCounter(name).Inc()
}

func (obj *Server) getCookieProfiles(c *gin.Context) map[string]bool {

	profiles := make(map[string]bool)
	for _, x := range obj.Profiles {
		profiles[x] = true // default all to true
	}

	if cookie, err := c.Cookie(CookieNameProfiles); err == nil {
		m, err := url.ParseQuery(cookie) // map[string][]string
		if err == nil && cookie != "" {
			for _, x := range obj.Profiles {
				profiles[x] = false
			}
			for name := range m {
				if _, exists := profiles[name]; exists {
					for _, x := range m[name] {
						if x == "true" {
							profiles[name] = true
						}
					}
				}
			}
		}
	}

	return profiles
}

// ReturnOutputHtmlBody returns a string of output, formatted in html. It is
// the body portion of the page.
func ReturnOutputHtmlBody(output *lib.Output) (string, error) {
	if len(output.Results) == 0 {
		// handle this here, otherwise we'll get an error below...
		s := `<table id="report">`
		x := "no results obtained"
		s += fmt.Sprintf(`<tr><th style="text-align: center"><i>%s</i></th></tr>`, x)
		s += "</table>"
		return s, nil
	}

	str := ""
	for _, x := range output.Profiles {
		pro, err := lib.SimpleProfiles(output.Results, output.ProfilesData[x], displaySummary, "html")
		if err != nil {
			return "", err
		}
		s := `<table id="report">`
		s += fmt.Sprintf(`<tr><th style="text-align: left">profile <i>%s</i>:</th></tr>`, html.EscapeString(x))
		s += pro
		s += "</table>"
		str += s + "<br />"
	}

	return str, nil
}

// LogWriter sends the gin logs to a Logf function.
type LogWriter struct {
	Logf func(format string, v ...interface{})
}

func (obj *LogWriter) Write(p []byte) (n int, err error) {
	obj.Logf("%s", strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
