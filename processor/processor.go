// Package processor provides document mapper implementations.
package processor

import "github.com/ZaguanLabs/epubtl"

// DocumentMapper is an alias to the main package interface.
type DocumentMapper = epubtl.DocumentMapper

// ContentRecord is an alias to the main package type.
type ContentRecord = epubtl.ContentRecord

// RebuildOptions is an alias to the main package type.
type RebuildOptions = epubtl.RebuildOptions
