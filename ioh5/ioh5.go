// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ioh5 implements the abstract dataset writer spec.md §6 names as
// an external collaborator (write_dataset, write_attribute, open_file,
// close_file), adapted from the teacher's gob/json Encoder/Decoder
// abstraction in fem/fileio.go, with the dump-file naming and vsType/
// vsMesh/vsKind attribute convention of spec.md §6's "Output files".
package ioh5

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	goio "io"
	"os"
	"path"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// Encoder defines encoders; gob or json, exactly as fem/fileio.go does.
type Encoder interface {
	Encode(e interface{}) error
}

// Decoder defines decoders; gob or json.
type Decoder interface {
	Decode(e interface{}) error
}

// GetEncoder returns a new encoder for enctype ("json" or, by default, "gob").
func GetEncoder(w goio.Writer, enctype string) Encoder {
	if enctype == "json" {
		return json.NewEncoder(w)
	}
	return gob.NewEncoder(w)
}

// GetDecoder returns a new decoder for enctype.
func GetDecoder(r goio.Reader, enctype string) Decoder {
	if enctype == "json" {
		return json.NewDecoder(r)
	}
	return gob.NewDecoder(r)
}

// Attrs is a dataset's attribute map, carrying the vsType/vsMesh/vsKind/
// vsStartCell/vsNumCells/vsLowerBounds/vsUpperBounds keys spec.md §6 names.
type Attrs map[string]interface{}

// Dataset is one named array plus its attribute map, queued for a single
// write to a File.
type Dataset struct {
	Name  string
	Data  []float64
	Attrs Attrs
}

// File is the abstract writer spec.md §6 names (write_dataset,
// write_attribute, open_file, close_file), single-rank-serializes-after-
// reduce (no parallel IO layout is prescribed, SPEC_FULL.md §D's carried
// Non-goal). File itself does no rank check; the caller decides which rank
// writes.
type File struct {
	path    string
	enctype string
	buf     bytes.Buffer
	enc     Encoder
	attrs   Attrs
}

// OpenFile opens (creates, for writing) a dump file at path with the given
// encoding type ("gob" default, "json" opt-in).
func OpenFile(filePath, enctype string) *File {
	if enctype == "" {
		enctype = "gob"
	}
	f := &File{path: filePath, enctype: enctype, attrs: make(Attrs)}
	f.enc = GetEncoder(&f.buf, enctype)
	return f
}

// WriteDataset appends one Dataset (name, attributes and data) to the
// buffered stream as a single encoded record.
func (o *File) WriteDataset(d Dataset) error {
	if err := o.enc.Encode(d); err != nil {
		return chk.Err("IOError: %v", err)
	}
	return nil
}

// WriteAttribute records a file-level attribute (e.g. vsMesh naming),
// flushed at CloseFile.
func (o *File) WriteAttribute(key string, value interface{}) {
	o.attrs[key] = value
}

// CloseFile flushes the file-level attributes and the buffered dataset
// stream to disk.
func (o *File) CloseFile(verbose bool) error {
	if err := o.enc.Encode(o.attrs); err != nil {
		return chk.Err("IOError: %v", err)
	}
	fil, err := os.Create(o.path)
	if err != nil {
		return chk.Err("IOError: cannot create %q: %v", o.path, err)
	}
	defer fil.Close()
	if _, err := fil.Write(o.buf.Bytes()); err != nil {
		return chk.Err("IOError: cannot write %q: %v", o.path, err)
	}
	if verbose {
		io.Pfblue2("file <%s> written\n", o.path)
	}
	return nil
}

// DumpPath builds the "<base>_<objectName>_<seq>"-style dump path spec.md
// §6 names, with the encoding type as the file extension.
func DumpPath(dir, base, objectName string, seq int, enctype string) string {
	if enctype == "" {
		enctype = "gob"
	}
	return path.Join(dir, io.Sf("%s_%s_%010d.%s", base, objectName, seq, enctype))
}

// HistoryPath builds the "<base>_History"-style path for the one history
// file that extends existing datasets in place by appending along the
// time axis (spec.md §6).
func HistoryPath(dir, base, enctype string) string {
	if enctype == "" {
		enctype = "gob"
	}
	return path.Join(dir, io.Sf("%s_History.%s", base, enctype))
}

// FieldAttrs builds the attribute set spec.md §6 prescribes for a Field
// dataset.
func FieldAttrs(meshName string) Attrs {
	return Attrs{"vsType": "variable", "vsMesh": meshName}
}

// MeshAttrs builds the attribute set spec.md §6 prescribes for a uniform-
// mesh time-series dataset.
func MeshAttrs(startCell, numCells []int, lowerBounds, upperBounds []float64) Attrs {
	return Attrs{
		"vsType":        "mesh",
		"vsKind":        "uniform",
		"vsStartCell":   startCell,
		"vsNumCells":    numCells,
		"vsLowerBounds": lowerBounds,
		"vsUpperBounds": upperBounds,
	}
}

// AppendHistory opens the history file for a rank-0-only append-in-place
// write: the existing encoded stream (if any) is read back, then new
// samples are appended and the whole stream rewritten, mirroring spec.md
// §6's "extends existing datasets in place by appending along the time
// axis" without requiring a real HDF5 library.
func AppendHistory(filePath, enctype string, newSamples Dataset) error {
	var existing []Dataset
	if fil, err := os.Open(filePath); err == nil {
		dec := GetDecoder(fil, enctype)
		for {
			var d Dataset
			if err := dec.Decode(&d); err != nil {
				break
			}
			existing = append(existing, d)
		}
		fil.Close()
	}
	f := OpenFile(filePath, enctype)
	for _, d := range existing {
		if d.Name == newSamples.Name {
			d.Data = append(d.Data, newSamples.Data...)
			newSamples = Dataset{}
			if err := f.WriteDataset(d); err != nil {
				return err
			}
			continue
		}
		if err := f.WriteDataset(d); err != nil {
			return err
		}
	}
	if newSamples.Name != "" {
		if err := f.WriteDataset(newSamples); err != nil {
			return err
		}
	}
	return f.CloseFile(false)
}
