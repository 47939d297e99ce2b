/* Copyright 2018 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package testutil has helpers for rendering and parsing the JSON
// messages that tables evaluate.
package testutil

import (
	"encoding/json"
	"fmt"
	"log"
	"testing"
)

// JS renders its argument as JSON for logs and test failures.  When
// the argument can't be marshaled, JS logs a warning and falls back to
// %#v.
func JS(x interface{}) string {
	bs, err := json.Marshal(&x)
	if err != nil {
		log.Printf("warning: testutil.JS error %s for %#v", err, x)
		return fmt.Sprintf("%#v", x)
	}
	return string(bs)
}

// Dwimjs parses a string or bytes as JSON, and a string that isn't
// JSON comes back unchanged.  Anything else is returned as is.
//
// See https://en.wikipedia.org/wiki/DWIM.
func Dwimjs(x interface{}) interface{} {
	switch vv := x.(type) {
	case []byte:
		return Dwimjs(string(vv))
	case string:
		var v interface{}
		if err := json.Unmarshal([]byte(vv), &v); err != nil {
			return vv
		}
		return v
	default:
		return x
	}
}

// Message parses a JSON object or fails the test.
func Message(t testing.TB, js string) map[string]interface{} {
	t.Helper()
	m, is := Dwimjs(js).(map[string]interface{})
	if !is {
		t.Fatalf("not a JSON object: %s", js)
	}
	return m
}
