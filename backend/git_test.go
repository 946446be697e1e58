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

package backend_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/awslabs/licexp/backend"
	"github.com/awslabs/licexp/interfaces"

	"github.com/google/go-cmp/cmp"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// commitFile writes the file into the repository and commits it.
func commitFile(t *testing.T, repository *git.Repository, dir, name, data string) plumbing.Hash {
	t.Helper()
	writeFile(t, filepath.Join(dir, name), data)
	worktree, err := repository.Worktree()
	if err != nil {
		t.Fatalf("worktree: %+v", err)
	}
	if _, err := worktree.Add(name); err != nil {
		t.Fatalf("add: %+v", err)
	}
	hash, err := worktree.Commit("add "+name, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "licexp",
			Email: "licexp@example.com",
			When:  time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	})
	if err != nil {
		t.Fatalf("commit: %+v", err)
	}
	return hash
}

func TestGit(t *testing.T) {
	dir := t.TempDir()
	repository, err := git.PlainInit(dir, false)
	if err != nil {
		t.Errorf("err: %+v", err)
		return
	}
	first := commitFile(t, repository, dir, "acme.yaml", vocabularyYAML)
	if _, err := repository.CreateTag("v1", first, nil); err != nil {
		t.Errorf("err: %+v", err)
		return
	}
	commitFile(t, repository, dir, "acme.yaml", "licenses:\n  - key: apache-2.0\n")

	store := &backend.Git{
		Logf:     t.Logf,
		Path:     dir,
		Filename: "{tenant}.yaml",
	}
	ctx := context.Background()

	list, err := store.Licenses(ctx, "acme", nil)
	if err != nil {
		t.Errorf("err: %+v", err)
		return
	}
	if diff := cmp.Diff([]string{"apache-2.0"}, keys(list)); diff != "" {
		t.Errorf("unexpected keys at HEAD (-want +got):\n%s", diff)
	}

	tagged := &backend.Git{
		Logf:     t.Logf,
		Path:     dir,
		Ref:      "refs/tags/v1",
		Filename: "{tenant}.yaml",
	}
	list, err = tagged.Licenses(ctx, "acme", []string{"mit"})
	if err != nil {
		t.Errorf("err: %+v", err)
		return
	}
	if diff := cmp.Diff([]string{"mit"}, keys(list)); diff != "" {
		t.Errorf("unexpected keys at tag (-want +got):\n%s", diff)
	}

	if _, err := store.Licenses(ctx, "globex", nil); !errors.Is(err, interfaces.ErrUnknownTenant) {
		t.Errorf("expected an unknown tenant, got: %v", err)
	}
}

func TestGitSetupErrors(t *testing.T) {
	tests := []*backend.Git{
		{Filename: "licenses.yaml"},
		{Path: "/a", URL: "https://example.com/a.git", Filename: "licenses.yaml"},
		{Path: t.TempDir()}, // no filename
		{Path: t.TempDir(), Filename: "licenses.yaml"}, // not a repository
	}
	for i, store := range tests {
		store.Logf = t.Logf
		if err := store.Setup(context.Background()); err == nil {
			t.Errorf("test #%d: expected an error", i)
		}
	}
}
