/*
 * Copyright 2025 Tidelang Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package strx

import (
	"github.com/goccy/go-json"
)

// The serialized forms project the content only, never the
// representation: a value marshals exactly like its Go string content and
// unmarshaling picks inline vs heap storage by size as usual.

func (s String) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.str())
}

func (s *String) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*s = FromString(str)
	return nil
}

func (s String) MarshalText() ([]byte, error) {
	return s.Bytes(), nil
}

func (s *String) UnmarshalText(b []byte) error {
	v, err := FromBytes(b)
	if err != nil {
		return err
	}
	*s = v
	return nil
}
