/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package clipboard

import (
	"sync"

	"github.com/atotto/clipboard"
)

// System is the platform clipboard holding text payloads across sessions.
type System interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

// OS is the desktop clipboard.
type OS struct{}

func (OS) ReadAll() (string, error)   { return clipboard.ReadAll() }
func (OS) WriteAll(text string) error { return clipboard.WriteAll(text) }

// Available reports whether a clipboard utility was found on this system.
func (OS) Available() bool { return !clipboard.Unsupported }

// Memory is an in-process System for tests and headless hosts.
type Memory struct {
	mu   sync.Mutex
	text string
}

func (m *Memory) ReadAll() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text, nil
}

func (m *Memory) WriteAll(text string) error {
	m.mu.Lock()
	m.text = text
	m.mu.Unlock()
	return nil
}
