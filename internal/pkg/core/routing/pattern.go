/*
Copyright 2025 The Routely Authors
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at
    http://www.apache.org/licenses/LICENSE-2.0
Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package routing

import (
	"fmt"
	"regexp"
	"strings"
)

// SegmentKind distinguishes the two path segment variants.
type SegmentKind int

const (
	// SegmentStatic is a literal token matched by exact equality.
	SegmentStatic SegmentKind = iota
	// SegmentParam is a named token matched by a constraint regex.
	SegmentParam
)

// defaultConstraint matches one or more characters excluding the path
// separator. Applied to `{name}` tokens that carry no explicit regex.
const defaultConstraint = "[^/]+"

// PathSegment is one slash-delimited token of a compiled path template.
type PathSegment struct {
	Kind SegmentKind
	// Literal holds the token text for static segments.
	Literal string
	// Name holds the parameter name for param segments.
	Name string
	// Constraint is the anchored matcher for param segments; nil for
	// static segments.
	Constraint *regexp.Regexp
	// ConstraintSrc is the verbatim regex text from the template, or
	// the default constraint. Kept for the route table dump.
	ConstraintSrc string
}

// matches reports whether one candidate path token satisfies this
// segment.
func (s *PathSegment) matches(token string) bool {
	if s.Kind == SegmentStatic {
		return s.Literal == token
	}
	return s.Constraint.MatchString(token)
}

// CompilePath compiles a path template into its ordered segment
// sequence. The template must already carry the servlet prefix; it must
// begin with '/'. Token shapes:
//
//	literal          exact-match static segment
//	{name}           parameter with the default single-segment constraint
//	{<regex>name}    parameter constrained by the verbatim regex
//
// Unbalanced braces, empty parameter names, invalid constraint regexes
// and parameter names reused within the template are compile errors.
func CompilePath(template string) ([]PathSegment, error) {
	if !strings.HasPrefix(template, "/") {
		return nil, fmt.Errorf("path template %q must begin with '/'", template)
	}

	tokens := SplitPath(template)
	segments := make([]PathSegment, 0, len(tokens))
	seen := make(map[string]bool)

	for _, token := range tokens {
		if token == "" {
			return nil, fmt.Errorf("path template %q contains an empty segment", template)
		}
		seg, err := compileToken(token)
		if err != nil {
			return nil, fmt.Errorf("path template %q: %w", template, err)
		}
		if seg.Kind == SegmentParam {
			if seen[seg.Name] {
				return nil, fmt.Errorf("path template %q: duplicate parameter name %q", template, seg.Name)
			}
			seen[seg.Name] = true
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

func compileToken(token string) (PathSegment, error) {
	if strings.HasPrefix(token, "{") {
		if !strings.HasSuffix(token, "}") {
			return PathSegment{}, fmt.Errorf("unbalanced braces in segment %q", token)
		}
		return compileParam(token[1 : len(token)-1])
	}
	// A brace anywhere else in the token is a malformed parameter, not
	// a literal to be matched verbatim.
	if strings.ContainsAny(token, "{}") {
		return PathSegment{}, fmt.Errorf("unbalanced braces in segment %q", token)
	}
	return PathSegment{Kind: SegmentStatic, Literal: token}, nil
}

// compileParam compiles the text between the braces of a parameter
// token: either `name` or `<regex>name`.
func compileParam(inner string) (PathSegment, error) {
	name := inner
	constraintSrc := defaultConstraint

	if strings.HasPrefix(inner, "<") {
		// The regex may itself contain '>', so the name starts after
		// the last one.
		end := strings.LastIndex(inner, ">")
		if end < 0 {
			return PathSegment{}, fmt.Errorf("unterminated constraint in segment {%s}", inner)
		}
		constraintSrc = inner[1:end]
		name = inner[end+1:]
		if constraintSrc == "" {
			return PathSegment{}, fmt.Errorf("empty constraint in segment {%s}", inner)
		}
	}

	if name == "" {
		return PathSegment{}, fmt.Errorf("empty parameter name in segment {%s}", inner)
	}
	if strings.ContainsAny(name, "{}<>") {
		return PathSegment{}, fmt.Errorf("invalid parameter name %q", name)
	}

	// Constraints apply to the whole captured segment, so anchor the
	// verbatim regex on both ends.
	re, err := regexp.Compile(`\A(?:` + constraintSrc + `)\z`)
	if err != nil {
		return PathSegment{}, fmt.Errorf("invalid constraint %q for parameter %q: %w", constraintSrc, name, err)
	}

	return PathSegment{
		Kind:          SegmentParam,
		Name:          name,
		Constraint:    re,
		ConstraintSrc: constraintSrc,
	}, nil
}
