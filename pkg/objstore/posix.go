// Copyright 2025 zhengshuai.xiao@outlook.com
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
package objstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// POSIXBackend stores each object as a regular file under root.
type POSIXBackend struct {
	root string
}

func NewPOSIXBackend(root string) (*POSIXBackend, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create object root %s: %w", root, err)
	}
	return &POSIXBackend{root: root}, nil
}

func (p *POSIXBackend) String() string {
	return "file://" + p.root
}

func (p *POSIXBackend) getLocalPath(name string) (string, error) {
	if name == "" || !filepath.IsLocal(filepath.FromSlash(name)) {
		return "", fmt.Errorf("%w: %q", ErrInvalidObjectName, name)
	}
	return filepath.Join(p.root, filepath.FromSlash(name)), nil
}

// WriteAt opens the object without truncation, writes at off and syncs
// before returning, so a successful return means the bytes are durable.
func (p *POSIXBackend) WriteAt(ctx context.Context, name string, buf []byte, off int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	localPath, err := p.getLocalPath(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
		return fmt.Errorf("failed to create object parent directory %s: %w", filepath.Dir(localPath), err)
	}

	f, err := os.OpenFile(localPath, os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	if _, err := f.WriteAt(buf, off); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %d bytes at %d to %s: %w", len(buf), off, name, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("failed to sync %s: %w", name, err)
	}
	return f.Close()
}

func (p *POSIXBackend) ReadAt(ctx context.Context, name string, buf []byte, off int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	localPath, err := p.getLocalPath(name)
	if err != nil {
		return 0, err
	}
	f, err := os.Open(localPath)
	if os.IsNotExist(err) {
		return 0, notFound(name)
	}
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return f.ReadAt(buf, off)
}

func (p *POSIXBackend) Stat(ctx context.Context, name string) (ObjectInfo, error) {
	localPath, err := p.getLocalPath(name)
	if err != nil {
		return ObjectInfo{}, err
	}
	fi, err := os.Stat(localPath)
	if os.IsNotExist(err) {
		return ObjectInfo{}, notFound(name)
	}
	if err != nil {
		return ObjectInfo{}, err
	}
	if fi.IsDir() {
		return ObjectInfo{}, notFound(name)
	}
	return ObjectInfo{Name: name, Size: fi.Size(), ModTime: fi.ModTime()}, nil
}
