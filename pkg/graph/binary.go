package graph

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"unsafe"
)

const (
	magicBytes = "WLKGRAPH"
	version    = uint32(1)
	maxNodes   = 10_000_000
	maxEdges   = 50_000_000
)

// fileHeader is the binary header of the node/edge source file.
type fileHeader struct {
	Magic    [8]byte
	Version  uint32
	NumNodes uint32
	NumEdges uint32
}

// WriteBinary serializes provider node and edge records to a binary file.
// Uses unsafe.Slice for fast zero-copy I/O and an atomic tmp+rename so a
// crashed write never leaves a truncated file behind.
func WriteBinary(path string, nodes []Node, edges []Edge) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath) // clean up on error
	}()

	crcWriter := crc32Writer{w: f, hash: crc32.NewIEEE()}
	w := &crcWriter

	hdr := fileHeader{
		Version:  version,
		NumNodes: uint32(len(nodes)),
		NumEdges: uint32(len(edges)),
	}
	copy(hdr.Magic[:], magicBytes)
	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	// Node columns.
	nodeID := make([]int64, len(nodes))
	nodeLat := make([]float64, len(nodes))
	nodeLon := make([]float64, len(nodes))
	for i, n := range nodes {
		nodeID[i] = n.ID
		nodeLat[i] = n.Lat
		nodeLon[i] = n.Lon
	}
	if err := writeInt64Slice(w, nodeID); err != nil {
		return fmt.Errorf("write NodeID: %w", err)
	}
	if err := writeFloat64Slice(w, nodeLat); err != nil {
		return fmt.Errorf("write NodeLat: %w", err)
	}
	if err := writeFloat64Slice(w, nodeLon); err != nil {
		return fmt.Errorf("write NodeLon: %w", err)
	}

	// Edge columns.
	edgeU := make([]int64, len(edges))
	edgeV := make([]int64, len(edges))
	edgeKey := make([]uint32, len(edges))
	edgeLen := make([]float64, len(edges))
	for i, e := range edges {
		edgeU[i] = e.U
		edgeV[i] = e.V
		edgeKey[i] = e.Key
		edgeLen[i] = e.LengthM
	}
	if err := writeInt64Slice(w, edgeU); err != nil {
		return fmt.Errorf("write EdgeU: %w", err)
	}
	if err := writeInt64Slice(w, edgeV); err != nil {
		return fmt.Errorf("write EdgeV: %w", err)
	}
	if err := writeUint32Slice(w, edgeKey); err != nil {
		return fmt.Errorf("write EdgeKey: %w", err)
	}
	if err := writeFloat64Slice(w, edgeLen); err != nil {
		return fmt.Errorf("write EdgeLen: %w", err)
	}

	// CRC32 trailer.
	checksum := crcWriter.hash.Sum32()
	if err := binary.Write(f, binary.LittleEndian, checksum); err != nil {
		return fmt.Errorf("write CRC32: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// ReadBinary deserializes provider node and edge records from a binary file.
// Any failure wraps ErrLoad: a corrupt graph source is fatal at startup.
func ReadBinary(path string) ([]Node, []Edge, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: open: %v", ErrLoad, err)
	}
	defer f.Close()

	crcReader := crc32Reader{r: f, hash: crc32.NewIEEE()}
	r := &crcReader

	var hdr fileHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, nil, fmt.Errorf("%w: read header: %v", ErrLoad, err)
	}
	if string(hdr.Magic[:]) != magicBytes {
		return nil, nil, fmt.Errorf("%w: invalid magic bytes %q", ErrLoad, hdr.Magic)
	}
	if hdr.Version != version {
		return nil, nil, fmt.Errorf("%w: unsupported version %d", ErrLoad, hdr.Version)
	}
	if hdr.NumNodes > maxNodes {
		return nil, nil, fmt.Errorf("%w: NumNodes %d exceeds limit %d", ErrLoad, hdr.NumNodes, maxNodes)
	}
	if hdr.NumEdges > maxEdges {
		return nil, nil, fmt.Errorf("%w: NumEdges %d exceeds limit %d", ErrLoad, hdr.NumEdges, maxEdges)
	}

	nn := int(hdr.NumNodes)
	ne := int(hdr.NumEdges)

	nodeID, err := readInt64Slice(r, nn)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read NodeID: %v", ErrLoad, err)
	}
	nodeLat, err := readFloat64Slice(r, nn)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read NodeLat: %v", ErrLoad, err)
	}
	nodeLon, err := readFloat64Slice(r, nn)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read NodeLon: %v", ErrLoad, err)
	}

	edgeU, err := readInt64Slice(r, ne)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read EdgeU: %v", ErrLoad, err)
	}
	edgeV, err := readInt64Slice(r, ne)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read EdgeV: %v", ErrLoad, err)
	}
	edgeKey, err := readUint32Slice(r, ne)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read EdgeKey: %v", ErrLoad, err)
	}
	edgeLen, err := readFloat64Slice(r, ne)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read EdgeLen: %v", ErrLoad, err)
	}

	// Validate CRC32.
	expectedCRC := crcReader.hash.Sum32()
	var storedCRC uint32
	if err := binary.Read(f, binary.LittleEndian, &storedCRC); err != nil {
		return nil, nil, fmt.Errorf("%w: read CRC32: %v", ErrLoad, err)
	}
	if storedCRC != expectedCRC {
		return nil, nil, fmt.Errorf("%w: CRC32 mismatch: stored=%08x computed=%08x", ErrLoad, storedCRC, expectedCRC)
	}

	nodes := make([]Node, nn)
	for i := range nodes {
		nodes[i] = Node{ID: nodeID[i], Lat: nodeLat[i], Lon: nodeLon[i]}
	}
	edges := make([]Edge, ne)
	for i := range edges {
		edges[i] = Edge{U: edgeU[i], V: edgeV[i], Key: edgeKey[i], LengthM: edgeLen[i]}
	}
	return nodes, edges, nil
}

// Zero-copy I/O helpers using unsafe.Slice.

func writeUint32Slice(w io.Writer, s []uint32) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
	_, err := w.Write(b)
	return err
}

func writeInt64Slice(w io.Writer, s []int64) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*8)
	_, err := w.Write(b)
	return err
}

func writeFloat64Slice(w io.Writer, s []float64) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*8)
	_, err := w.Write(b)
	return err
}

func readUint32Slice(r io.Reader, n int) ([]uint32, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]uint32, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*4)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

func readInt64Slice(r io.Reader, n int) ([]int64, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]int64, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*8)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

func readFloat64Slice(r io.Reader, n int) ([]float64, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]float64, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*8)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

// CRC32 wrapping writers/readers.

type crc32Writer struct {
	w    io.Writer
	hash crc32Hash
}

type crc32Hash interface {
	Write([]byte) (int, error)
	Sum32() uint32
}

func (cw *crc32Writer) Write(p []byte) (int, error) {
	cw.hash.Write(p)
	return cw.w.Write(p)
}

type crc32Reader struct {
	r    io.Reader
	hash crc32Hash
}

func (cr *crc32Reader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.hash.Write(p[:n])
	}
	return n, err
}
