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

package backend

import (
	"context"
	"fmt"
	"sync"

	"github.com/awslabs/licexp/interfaces"
	"github.com/awslabs/licexp/util"
	"github.com/awslabs/licexp/util/errwrap"
	"github.com/awslabs/licexp/util/licenses"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
)

// Git reads the vocabulary from a file that is committed in a git repository.
// This lets license catalogs be reviewed and versioned like code. Exactly one
// of Path or URL must be set.
type Git struct {
	Debug bool
	Logf  func(format string, v ...interface{})

	// Path is a local repository which is opened in place.
	Path string

	// URL is a remote repository which is cloned into memory the first
	// time it's needed.
	URL string

	// Ref is the reference to read from, such as refs/heads/main or
	// refs/tags/v1. If empty, HEAD is used. It is resolved again on every
	// call, so a local repository which moves forward is picked up.
	Ref string

	// Filename is the path of the vocabulary in the repository. It may
	// contain the {tenant} tag.
	Filename string

	mutex      sync.Mutex
	repository *git.Repository
}

func (obj *Git) String() string {
	if obj.URL != "" {
		return fmt.Sprintf("git(%s:%s)", obj.URL, obj.Filename)
	}
	return fmt.Sprintf("git(%s:%s)", obj.Path, obj.Filename)
}

// Setup opens or clones the repository. It's safe to call more than once, and
// Licenses calls it if you haven't.
func (obj *Git) Setup(ctx context.Context) error {
	obj.mutex.Lock()
	defer obj.mutex.Unlock()
	_, err := obj.open(ctx)
	return err
}

// open must be called with the mutex held.
func (obj *Git) open(ctx context.Context) (*git.Repository, error) {
	if obj.repository != nil {
		return obj.repository, nil
	}
	if (obj.Path == "") == (obj.URL == "") {
		return nil, fmt.Errorf("exactly one of Path or URL must be specified")
	}
	if obj.Filename == "" {
		return nil, fmt.Errorf("empty filename")
	}

	if obj.Path != "" {
		repository, err := git.PlainOpen(obj.Path)
		if err != nil {
			return nil, errwrap.Wrapf(err, "error opening repository %s", obj.Path)
		}
		obj.repository = repository
		return repository, nil
	}

	obj.Logf("cloning %s into memory", obj.URL)
	opts := &git.CloneOptions{
		URL:               obj.URL,
		RecurseSubmodules: git.NoRecurseSubmodules,
		Depth:             1,
	}
	if obj.Ref != "" {
		opts.ReferenceName = plumbing.ReferenceName(obj.Ref)
		opts.SingleBranch = true
	}
	repository, err := git.CloneContext(ctx, memory.NewStorage(), nil, opts)
	if err != nil {
		return nil, errwrap.Wrapf(err, "error cloning repository %s", obj.URL)
	}
	obj.repository = repository
	return repository, nil
}

// Licenses returns the licenses from the committed file of this tenant.
func (obj *Git) Licenses(ctx context.Context, tenant string, keys []string) ([]*licenses.License, error) {
	perTenant := util.HasTenant(obj.Filename)
	if perTenant && tenant == "" {
		return nil, interfaces.ErrEmptyTenant
	}

	if err := obj.Setup(ctx); err != nil {
		return nil, err
	}

	obj.mutex.Lock() // go-git is not safe for concurrent use
	defer obj.mutex.Unlock()

	var hash plumbing.Hash
	if obj.Ref != "" {
		h, err := getCommitFromRef(obj.repository, plumbing.ReferenceName(obj.Ref))
		if err != nil {
			return nil, errwrap.Wrapf(err, "could not resolve %s", obj.Ref)
		}
		hash = h
	} else {
		head, err := obj.repository.Head()
		if err != nil {
			return nil, errwrap.Wrapf(err, "could not find HEAD")
		}
		hash = head.Hash()
	}

	commit, err := obj.repository.CommitObject(hash)
	if err != nil {
		return nil, errwrap.Wrapf(err, "could not get commit %s", hash)
	}

	name := util.ExpandTenant(obj.Filename, tenant)
	file, err := commit.File(name)
	if err == object.ErrFileNotFound && perTenant {
		return nil, errwrap.Wrapf(interfaces.ErrUnknownTenant, "no file for tenant %s", tenant)
	}
	if err != nil {
		return nil, errwrap.Wrapf(err, "could not find %s in commit %s", name, hash)
	}
	if obj.Debug {
		obj.Logf("reading %s at %s", name, hash)
	}

	contents, err := file.Contents()
	if err != nil {
		return nil, errwrap.Wrapf(err, "could not read %s", name)
	}
	return decode([]byte(contents), licenses.FormatFromFilename(name), keys)
}

// getCommitFromRef returns the commit that a branch or tag points to. Annotated
// tags are peeled to their commit.
func getCommitFromRef(repository *git.Repository, ref plumbing.ReferenceName) (plumbing.Hash, error) {
	resolved := true
	b, err := repository.Reference(ref, resolved)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	if !b.Name().IsTag() {
		return b.Hash(), nil
	}

	o, err := repository.Object(plumbing.AnyObject, b.Hash())
	if err != nil {
		return plumbing.ZeroHash, err
	}

	switch o := o.(type) {
	case *object.Tag:
		if o.TargetType != plumbing.CommitObject {
			return plumbing.ZeroHash, fmt.Errorf("unsupported tag object target %q", o.TargetType)
		}
		return o.Target, nil

	case *object.Commit:
		return o.Hash, nil
	}

	return plumbing.ZeroHash, fmt.Errorf("unsupported tag target %q", o.Type())
}
