/*
Package flatyml reads flat key/value pairs from a restricted YAML-like
configuration file.

# Overview

Only two line shapes are understood:

	name: "srv1"
	slots: 4

Keys are ASCII letters, digits and underscores. Values are either signed
decimal integers or double-quoted strings of letters, digits, underscores
and spaces. Every other line (comments, blank lines, nested structure,
floats, booleans, unquoted strings) is ignored without error.

# Basic Usage

	r, err := flatyml.Open("server.yml")
	if err != nil {
	    log.Fatal(err)
	}
	defer r.Close()

	if err := r.Parse(context.Background()); err != nil {
	    log.Fatal(err)
	}

	name, _ := r.String("name")
	slots, _ := r.Int("slots")

# Lifecycle

A Reader starts unparsed. Parse runs once; a second call returns
ErrAlreadyParsed without touching the index. Lookups before Parse find
nothing. Close drops the text and the index; lookups after Close find
nothing and GetInto returns ErrClosed.

# Duplicate Keys

The last assignment wins. In the default TwoPass mode all integer lines are
applied in file order, then all string lines, so a key assigned both an
integer and a string ends up holding the string. SinglePass applies every
line in file order regardless of kind.

# Error Codes

Every sentinel error has a stable negative Code, available via CodeOf,
for callers that need integer status values.

# Thread Safety

Parse and Close are serialized. Lookups are lock-free and safe to run
concurrently with each other and with Parse. Close must not run
concurrently with lookups.
*/
package flatyml
