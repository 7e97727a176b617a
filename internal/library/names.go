package library

import (
	"path/filepath"
	"strings"
)

// CollectionName is the parsed name of a collection folder
type CollectionName struct {
	Sequence string
	Title    string
}

// DeckName is the parsed file name of a deck
type DeckName struct {
	Sequence string
	Artist   string
	Title    string
}

// ParseCollectionName splits "<sequence>-<title>". The title keeps any
// further hyphens.
func ParseCollectionName(name string) (CollectionName, error) {
	fields, err := splitFields(name, name, 2)
	if err != nil {
		return CollectionName{}, err
	}
	return CollectionName{Sequence: fields[0], Title: fields[1]}, nil
}

// ParseDeckName splits "<sequence>-<artist>-<title>.<ext>"
func ParseDeckName(file string) (DeckName, error) {
	base := strings.TrimSuffix(file, filepath.Ext(file))
	fields, err := splitFields(file, base, 3)
	if err != nil {
		return DeckName{}, err
	}
	return DeckName{Sequence: fields[0], Artist: fields[1], Title: fields[2]}, nil
}

func splitFields(name, s string, n int) ([]string, error) {
	fields := strings.SplitN(s, "-", n)
	if len(fields) < n {
		return nil, &MalformedEntryError{Name: name, Reason: "too few hyphen-separated fields"}
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
		if fields[i] == "" {
			return nil, &MalformedEntryError{Name: name, Reason: "empty field"}
		}
	}
	return fields, nil
}
