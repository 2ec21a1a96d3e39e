// Package epubtl translates the text of EPUB books through size-limited
// translation backends.
//
// Epubtl extracts translatable text from XHTML documents, batches the
// distinct texts into chunks that fit a backend's request size, caches
// every translation durably, and writes the translations back either in
// place of the original text or next to it.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "log"
//
//	    "github.com/ZaguanLabs/epubtl"
//	    "github.com/ZaguanLabs/epubtl/cache"
//	    "github.com/ZaguanLabs/epubtl/epub"
//	    "github.com/ZaguanLabs/epubtl/processor"
//	    "github.com/ZaguanLabs/epubtl/provider"
//	)
//
//	func main() {
//	    ctx := context.Background()
//
//	    store, err := cache.NewFileStore("book.cache.json")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    p, err := provider.NewGoogleProvider(ctx, provider.GoogleConfig{ProjectID: "my-project"})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer p.Close()
//
//	    t, err := epubtl.NewTranslator(p,
//	        epubtl.WithStore(store),
//	        epubtl.WithLanguages("en-US", "zh-CN"),
//	        epubtl.WithChunkSize(1000),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    book, err := epub.Open("book.epub")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    dt := epubtl.NewDocumentTranslator(t, processor.NewXHTMLProcessor())
//	    if _, err := dt.Process(ctx, book, epubtl.ModeInline); err != nil {
//	        log.Fatal(err)
//	    }
//	    if err := book.Write("book.dual.epub"); err != nil {
//	        log.Fatal(err)
//	    }
//	}
package epubtl
