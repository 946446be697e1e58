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

// Package s3 reads license vocabularies from, and writes normalization reports
// to, an s3 bucket.
package s3

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/awslabs/licexp/util/errwrap"

	"github.com/aws/aws-sdk-go-v2/aws"
	s3config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Error is a constant error type that implements error.
type Error string

// Error fulfills the error interface of this type.
func (e Error) Error() string { return string(e) }

const (
	// ErrNotFound is returned by Load when the object does not exist.
	ErrNotFound = Error("object not found")

	// GrantReadAllUsers is the constant used to give read access to all.
	GrantReadAllUsers = "uri=http://acs.amazonaws.com/groups/global/AllUsers"

	// DefaultRegion is a region to use if none are specified.
	DefaultRegion = "ca-central-1" // yul

	// PresignExpiry is how long the URL returned by Store is valid. It's
	// the largest value that s3 accepts.
	PresignExpiry = 7 * 24 * time.Hour
)

// PubURL returns the public URL for an object in a given region and bucket.
// This depends on you setting the appropriate permissions and choosing valid
// input parameters. No validation is done, this is just templating.
func PubURL(region, bucket, object string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, region, object)
}

// newClient builds a client for the region from the default credential chain.
func newClient(ctx context.Context, region string) (*s3.Client, error) {
	// TODO: check if region is valid?
	if region == "" {
		return nil, fmt.Errorf("empty region")
	}
	cfg, err := s3config.LoadDefaultConfig(ctx, s3config.WithRegion(region))
	if err != nil {
		return nil, errwrap.Wrapf(err, "config error")
	}
	cfg.Region = region
	return s3.NewFromConfig(cfg), nil
}

// LoadInputs is the set of information required to use the Load function.
type LoadInputs struct {
	// Region is the region of the bucket.
	Region string

	// BucketName is the name of the bucket.
	BucketName string

	// ObjectName is the name of the object to read.
	ObjectName string

	Debug bool
	Logf  func(format string, v ...interface{})
}

// Load returns the contents of an object. If the object doesn't exist, the
// error wraps ErrNotFound. This depends on you having appropriate AWS
// credentials set up on your machine for the account you want to use.
func Load(ctx context.Context, inputs *LoadInputs) ([]byte, error) {
	if inputs.BucketName == "" || inputs.ObjectName == "" {
		return nil, fmt.Errorf("bucket and object names must be specified")
	}
	client, err := newClient(ctx, inputs.Region)
	if err != nil {
		return nil, err
	}

	if inputs.Debug {
		inputs.Logf("getting object %s from bucket %s...", inputs.ObjectName, inputs.BucketName)
	}
	output, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(inputs.BucketName),
		Key:    aws.String(inputs.ObjectName),
	})
	var noSuchKey *s3types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return nil, errwrap.Wrapf(ErrNotFound, "object %s in bucket %s", inputs.ObjectName, inputs.BucketName)
	}
	if err != nil {
		return nil, errwrap.Wrapf(err, "get error")
	}
	defer output.Body.Close()

	data, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, errwrap.Wrapf(err, "read error")
	}
	return data, nil
}

// Inputs is the set of information required to use the Store method.
type Inputs struct {
	// Region is the region where we will push the data.
	Region string

	// BucketName is the name of the bucket.
	BucketName string

	// CreateBucket is true if we wish to create the bucket if it's missing.
	CreateBucket bool

	// ObjectName is the name of the object.
	ObjectName string

	// GrantReadAllUsers specifies that all users read access will be set on
	// this object. Only use this if you are certain you want anyone on the
	// internet to be able to read this object.
	GrantReadAllUsers bool

	// ContentType is what is set for the object if it is non-nil.
	ContentType *string

	// Data is the actual data to store.
	Data []byte

	Debug bool
	Logf  func(format string, v ...interface{})
}

// Store takes some inputs and stores the data into s3. If successful, it
// returns a presign URL that can be shared to give access to the object. If you
// chose to make the object public, then it can also be accessed using the
// well-known public URL as obtained by the PubURL function. This depends on you
// having appropriate AWS credentials set up on your machine for the account you
// want to use.
func Store(ctx context.Context, inputs *Inputs) (string, error) {
	if inputs.Debug {
		inputs.Logf("begin s3...")
		defer inputs.Logf("done s3")
	}

	client, err := newClient(ctx, inputs.Region)
	if err != nil {
		return "", err
	}

	if inputs.CreateBucket {
		if err := createBucket(ctx, client, inputs); err != nil {
			return "", err
		}
	}

	body := bytes.NewReader(inputs.Data) // support seek

	// we hash this to make idempotent puts avoid copying the data again...
	h := md5.New()
	if _, err := io.Copy(h, body); err != nil {
		return "", errwrap.Wrapf(err, "copy to hash error")
	}
	// rewind after hashing
	if _, err := body.Seek(0, io.SeekStart); err != nil {
		return "", errwrap.Wrapf(err, "seek error")
	}

	md5s := base64.StdEncoding.EncodeToString(h.Sum(nil))
	if inputs.Debug {
		inputs.Logf("md5s: %s", md5s)
	}

	putObjectInput := &s3.PutObjectInput{
		Bucket:       aws.String(inputs.BucketName),
		Key:          aws.String(inputs.ObjectName),
		Body:         body,
		ContentMD5:   &md5s,
		ContentType:  inputs.ContentType,
		StorageClass: s3types.StorageClassStandard,
	}
	if inputs.GrantReadAllUsers { // give all users on internet read access!
		putObjectInput.GrantRead = aws.String(GrantReadAllUsers)
	}

	inputs.Logf("putting object...")
	if _, err := client.PutObject(ctx, putObjectInput); err != nil {
		return "", errwrap.Wrapf(err, "put error")
	}

	presignClient := s3.NewPresignClient(client, s3.WithPresignExpires(PresignExpiry))
	presignResult, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(inputs.BucketName),
		Key:    aws.String(inputs.ObjectName),
	})
	if err != nil {
		return "", errwrap.Wrapf(err, "presign error")
	}

	return presignResult.URL, nil
}

// createBucket makes the bucket unless we already own it.
func createBucket(ctx context.Context, client *s3.Client, inputs *Inputs) error {
	if inputs.Debug {
		inputs.Logf("creating bucket...")
	}
	_, err := client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(inputs.BucketName),
		CreateBucketConfiguration: &s3types.CreateBucketConfiguration{
			// If you don't specify a Region, the bucket is created
			// in the US East (N. Virginia) Region (us-east-1).
			LocationConstraint: s3types.BucketLocationConstraint(inputs.Region),
		},
	})
	var owned *s3types.BucketAlreadyOwnedByYou
	if err != nil && !errors.As(err, &owned) {
		return errwrap.Wrapf(err, "bucket creation issue")
	}
	if inputs.Debug {
		inputs.Logf("bucket should exist")
	}
	return nil
}
