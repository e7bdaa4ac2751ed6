// Copyright © 2018 One Concern

// Package storage provides an interface to handle raw backend storage objects.
//
// This package supports the following backends:
//   - GCS (Google)
//   - S3 (AWS)
//   - local file system
//   - embedded badger database
package storage
