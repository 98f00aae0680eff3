package heapstore

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"minirel/internal/relation"
)

const fileMagic = "MRL1" // 4 bytes magic

// writeHeader writes the table schema to the beginning of the file.
func writeHeader(w io.Writer, columns []string, attrs []relation.DataType) error {
	if len(columns) > 0xFFFF {
		return fmt.Errorf("heapstore: too many columns: %d", len(columns))
	}
	if _, err := w.Write([]byte(fileMagic)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(columns))); err != nil {
		return err
	}

	for i, name := range columns {
		nameBytes := []byte(name)
		if len(nameBytes) > 0xFFFF {
			return fmt.Errorf("heapstore: column name too long: %s", name)
		}
		if err := binary.Write(w, binary.LittleEndian, uint16(len(nameBytes))); err != nil {
			return err
		}
		if _, err := w.Write(nameBytes); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint8(attrs[i])); err != nil {
			return err
		}
	}

	return nil
}

// readHeader reads the schema from the beginning of the file and leaves
// the read position at the start of the first page. It also reports how
// many bytes the header occupies.
func readHeader(r io.Reader) (columns []string, attrs []relation.DataType, headerLen int, err error) {
	magicBuf := make([]byte, len(fileMagic))
	if _, err = io.ReadFull(r, magicBuf); err != nil {
		return nil, nil, 0, err
	}
	if string(magicBuf) != fileMagic {
		return nil, nil, 0, fmt.Errorf("heapstore: invalid file magic, not a minirel table file")
	}
	headerLen = len(fileMagic)

	var numCols uint16
	if err = binary.Read(r, binary.LittleEndian, &numCols); err != nil {
		return nil, nil, 0, err
	}
	headerLen += 2

	columns = make([]string, numCols)
	attrs = make([]relation.DataType, numCols)
	for i := 0; i < int(numCols); i++ {
		var nameLen uint16
		if err = binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
			return nil, nil, 0, err
		}
		nameBytes := make([]byte, nameLen)
		if _, err = io.ReadFull(r, nameBytes); err != nil {
			return nil, nil, 0, err
		}
		var a uint8
		if err = binary.Read(r, binary.LittleEndian, &a); err != nil {
			return nil, nil, 0, err
		}
		columns[i] = string(nameBytes)
		attrs[i] = relation.DataType(a)
		headerLen += 2 + int(nameLen) + 1
	}

	return columns, attrs, headerLen, nil
}

// encodeRow encodes a full row in schema order. The schema makes the
// layout self-evident, so values carry no type tags:
//
//	INT:     int32 (little endian)
//	TEXT:    uint32 length + bytes
//	BOOLEAN: 1 byte (0 or 1)
func encodeRow(row relation.Row, columns []string, attrs []relation.DataType) ([]byte, error) {
	var buf bytes.Buffer
	for i, col := range columns {
		v := row[col]
		switch attrs[i] {
		case relation.Int:
			if err := binary.Write(&buf, binary.LittleEndian, v.N); err != nil {
				return nil, err
			}
		case relation.Text:
			b := []byte(v.S)
			if err := binary.Write(&buf, binary.LittleEndian, uint32(len(b))); err != nil {
				return nil, err
			}
			buf.Write(b)
		case relation.Boolean:
			var b byte
			if v.B {
				b = 1
			}
			buf.WriteByte(b)
		default:
			return nil, fmt.Errorf("heapstore: unsupported column type %v", attrs[i])
		}
	}
	return buf.Bytes(), nil
}

// decodeRow decodes a row encoded by encodeRow.
func decodeRow(buf []byte, columns []string, attrs []relation.DataType) (relation.Row, error) {
	row := make(relation.Row, len(columns))
	offset := 0

	for i, col := range columns {
		switch attrs[i] {
		case relation.Int:
			if offset+4 > len(buf) {
				return nil, fmt.Errorf("heapstore: truncated row")
			}
			n := int32(binary.LittleEndian.Uint32(buf[offset : offset+4]))
			offset += 4
			row[col] = relation.IntValue(n)

		case relation.Text:
			if offset+4 > len(buf) {
				return nil, fmt.Errorf("heapstore: truncated row")
			}
			l := binary.LittleEndian.Uint32(buf[offset : offset+4])
			offset += 4
			if offset+int(l) > len(buf) {
				return nil, fmt.Errorf("heapstore: invalid string length")
			}
			row[col] = relation.TextValue(string(buf[offset : offset+int(l)]))
			offset += int(l)

		case relation.Boolean:
			if offset+1 > len(buf) {
				return nil, fmt.Errorf("heapstore: truncated row")
			}
			row[col] = relation.BoolValue(buf[offset] != 0)
			offset++

		default:
			return nil, fmt.Errorf("heapstore: unsupported column type %v", attrs[i])
		}
	}

	return row, nil
}
