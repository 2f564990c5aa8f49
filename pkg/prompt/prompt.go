/* Copyright 2025 Dnote Authors
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

// Package prompt provides utilities for interactive yes/no prompts
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// ErrNoAnswer is returned when the input ends before any answer
var ErrNoAnswer = errors.New("no answer")

// affirmative are the accepted answers for yes. Technicians answer in
// Spanish as often as in English.
var affirmative = map[string]bool{
	"y":   true,
	"yes": true,
	"s":   true,
	"si":  true,
	"sí":  true,
}

// FormatQuestion formats a yes/no question with the appropriate choice indicator
func FormatQuestion(question string, optimistic bool) string {
	choices := "(y/N)"
	if optimistic {
		choices = "(Y/n)"
	}
	return fmt.Sprintf("%s %s", question, choices)
}

// ParseAnswer reports whether the answer confirms. In optimistic mode an
// empty answer confirms.
func ParseAnswer(input string, optimistic bool) bool {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return optimistic
	}

	return affirmative[input]
}

// ReadYesNo reads one line from the given reader and parses it as an answer.
// A last line without a trailing newline is still an answer.
func ReadYesNo(r io.Reader, optimistic bool) (bool, error) {
	reader := bufio.NewReader(r)
	input, err := reader.ReadString('\n')
	if err == io.EOF && input == "" {
		return false, ErrNoAnswer
	}
	if err != nil && err != io.EOF {
		return false, errors.Wrap(err, "reading the answer")
	}

	return ParseAnswer(input, optimistic), nil
}
