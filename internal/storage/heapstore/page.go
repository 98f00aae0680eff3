package heapstore

import (
	"encoding/binary"
	"fmt"
)

const (
	// PageSize is the fixed size of a heap page on disk.
	PageSize = 4096

	pageMagic = "MRP1"

	pageHeaderLen = 16

	tombstone = 0xFFFF
)

// Page layout (on disk):
//
//	offset  size  field
//	0       4     magic "MRP1"
//	4       4     pageID (uint32)
//	8       2     numSlots (uint16)
//	10      2     freeStart (uint16) - where next row bytes can be written
//	12      4     reserved
//	16..    row area...
//
// Slot directory is at the end of the page, each slot 4 bytes:
//
//	[offset uint16][length uint16]
//
// slot i is located at PageSize - (i+1)*4. A deleted slot keeps its
// directory entry with offset == 0xFFFF; the directory never shrinks, so
// the slot ids of surviving rows stay stable for the life of the file.
type pageBuf []byte

// newHeapPage initializes a new empty heap page with the given pageID.
func newHeapPage(pageID uint32) pageBuf {
	buf := make([]byte, PageSize)
	copy(buf[0:4], []byte(pageMagic))
	binary.LittleEndian.PutUint32(buf[4:8], pageID)
	binary.LittleEndian.PutUint16(buf[8:10], 0)
	binary.LittleEndian.PutUint16(buf[10:12], pageHeaderLen)
	return buf
}

func (p pageBuf) pageID() uint32 {
	return binary.LittleEndian.Uint32(p[4:8])
}

func (p pageBuf) numSlots() uint16 {
	return binary.LittleEndian.Uint16(p[8:10])
}

func (p pageBuf) setNumSlots(n uint16) {
	binary.LittleEndian.PutUint16(p[8:10], n)
}

func (p pageBuf) freeStart() uint16 {
	return binary.LittleEndian.Uint16(p[10:12])
}

func (p pageBuf) setFreeStart(off uint16) {
	binary.LittleEndian.PutUint16(p[10:12], off)
}

// slotPos returns the byte index in the page of slot i (0-based).
func slotPos(i uint16) int {
	return PageSize - int(i+1)*4
}

// getSlot reads slot i (0-based): (offset, length).
func (p pageBuf) getSlot(i uint16) (uint16, uint16) {
	pos := slotPos(i)
	off := binary.LittleEndian.Uint16(p[pos : pos+2])
	length := binary.LittleEndian.Uint16(p[pos+2 : pos+4])
	return off, length
}

// setSlot writes slot i (0-based).
func (p pageBuf) setSlot(i uint16, off, length uint16) {
	pos := slotPos(i)
	binary.LittleEndian.PutUint16(p[pos:pos+2], off)
	binary.LittleEndian.PutUint16(p[pos+2:pos+4], length)
}

// insertRow places an encoded row into the page and returns its slot
// index. Tombstoned slots are never reused. Returns an error when the
// page has no room.
func (p pageBuf) insertRow(rowBytes []byte) (uint16, error) {
	nSlots := p.numSlots()
	freeStart := p.freeStart()
	rowLen := uint16(len(rowBytes))

	needed := int(rowLen) + 4 // row bytes plus a new directory entry
	freeEnd := PageSize - int(nSlots)*4

	if int(freeStart)+needed > freeEnd {
		return 0, fmt.Errorf("heapstore: page %d is full", p.pageID())
	}

	copy(p[freeStart:int(freeStart)+len(rowBytes)], rowBytes)

	slotIdx := nSlots
	p.setNumSlots(nSlots + 1)
	p.setSlot(slotIdx, freeStart, rowLen)
	p.setFreeStart(freeStart + rowLen)

	return slotIdx, nil
}

// hasRoom reports whether a row of rowLen bytes fits in the page.
func (p pageBuf) hasRoom(rowLen int) bool {
	freeEnd := PageSize - int(p.numSlots())*4
	return int(p.freeStart())+rowLen+4 <= freeEnd
}

// rowBytes returns the stored bytes of a live slot.
func (p pageBuf) rowBytes(i uint16) ([]byte, error) {
	if i >= p.numSlots() {
		return nil, fmt.Errorf("heapstore: page %d has no slot %d", p.pageID(), i)
	}
	off, length := p.getSlot(i)
	if off == tombstone {
		return nil, fmt.Errorf("heapstore: page %d slot %d is deleted", p.pageID(), i)
	}
	end := int(off) + int(length)
	if end > len(p) {
		return nil, fmt.Errorf("heapstore: corrupt slot %d on page %d", i, p.pageID())
	}
	return p[off:end], nil
}

// iterateRows calls fn(slotIndex, rowBytes) for each live row in slot order.
func (p pageBuf) iterateRows(fn func(slot uint16, rowBytes []byte) error) error {
	nSlots := p.numSlots()
	for i := uint16(0); i < nSlots; i++ {
		off, length := p.getSlot(i)
		if off == tombstone {
			continue
		}
		end := int(off) + int(length)
		if end > len(p) {
			return fmt.Errorf("heapstore: corrupt slot %d on page %d", i, p.pageID())
		}
		if err := fn(i, p[off:end]); err != nil {
			return err
		}
	}
	return nil
}

// deleteSlot tombstones slot i. When the deleted row sits at the end of
// the in-use row area its bytes are reclaimed by rewinding freeStart.
// The slot directory itself is left alone so surviving slot ids never
// move.
func (p pageBuf) deleteSlot(i uint16) {
	off, length := p.getSlot(i)
	p.setSlot(i, tombstone, 0)

	if off == tombstone || length == 0 {
		return
	}
	if off+length == p.freeStart() {
		p.setFreeStart(off)
	}
}
