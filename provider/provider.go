// Package provider defines translation backends.
package provider

import "github.com/ZaguanLabs/epubtl"

// Provider is the interface for translation backends.
// This is an alias to the main package interface for convenience.
type Provider = epubtl.Provider

// TranslateRequest is an alias to the main package type.
type TranslateRequest = epubtl.TranslateRequest
