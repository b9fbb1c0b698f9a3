// Package rifftree reconstructs the chunk hierarchy of RIFF-family
// container files from their flat byte layout, without loading chunk
// bodies into memory.
//
// A Manager owns one file's reconstructed state: the node table built
// in a single forward pass with residue accounting, the canonical slot
// assignment (container, format, data, fact, bext, pad, INFO, peak),
// the derived stream frame count, and the lifecycle flags. Chunk
// bodies stay in the Source and are fetched on demand, so very large
// files parse in constant memory.
//
//	src, _ := rifftree.OpenFileSource("take.wav")
//	m := rifftree.NewManager(src)
//	if err := m.Parse(); err != nil { ... }
//
// The same manager authors canonical files: Create lays out a WAVE
// skeleton, the consistency engine keeps every declared size in step
// while stream parameters change, and a StreamWriter flushes the
// finished bytes after a final Build.
//
// Sample access uses go-audio buffers: StreamReader decodes PCM
// integer (8/16/24/32-bit), IEEE float (32/64-bit), A-law and mu-law
// payloads into audio.Float32Buffer at arbitrary frame positions.
package rifftree
