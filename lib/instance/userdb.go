// Copyright 2026 Rapid SCADA Agent contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package instance

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"strings"

	"github.com/gravitational/trace"
)

// UserRecord is one row of BaseDAT/user.dat: the fixed-schema columns the
// core consumes. The on-disk format is otherwise opaque to the core, per
// spec §6.
type UserRecord struct {
	Name     string
	Password string
	RoleID   int
}

// userDatMagic tags the record file so a malformed or foreign file fails
// fast instead of silently returning zero users.
const userDatMagic = "SCUSRDB1"

// ReadUserDat parses a BaseDAT/user.dat file into its records. The format
// is a small fixed-schema binary layout: an 8-byte magic, then for each
// record a uint16 name length + name, uint16 password length + password,
// and an int32 role id, all little-endian.
func ReadUserDat(path string) ([]UserRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	return decodeUserDat(data)
}

func decodeUserDat(data []byte) ([]UserRecord, error) {
	r := bytes.NewReader(data)

	magic := make([]byte, len(userDatMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, trace.BadParameter("user.dat: truncated header")
	}
	if string(magic) != userDatMagic {
		return nil, trace.BadParameter("user.dat: bad magic, not a recognized user database")
	}

	var records []UserRecord
	for {
		rec, err := readRecord(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, trace.Wrap(err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func readRecord(r *bytes.Reader) (UserRecord, error) {
	name, err := readString(r)
	if err != nil {
		return UserRecord{}, err
	}
	password, err := readString(r)
	if err != nil {
		return UserRecord{}, trace.Wrap(err)
	}
	var roleID int32
	if err := binary.Read(r, binary.LittleEndian, &roleID); err != nil {
		return UserRecord{}, trace.BadParameter("user.dat: truncated role id")
	}
	return UserRecord{Name: name, Password: password, RoleID: int(roleID)}, nil
}

func readString(r *bytes.Reader) (string, error) {
	var length uint16
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		if err == io.EOF {
			return "", io.EOF
		}
		return "", trace.BadParameter("user.dat: truncated string length")
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", trace.BadParameter("user.dat: truncated string body")
	}
	return string(buf), nil
}

// EncodeUserDat serializes records in the format ReadUserDat expects.
// Used by tests and by administrative tooling that provisions user.dat.
func EncodeUserDat(records []UserRecord) []byte {
	var buf bytes.Buffer
	buf.WriteString(userDatMagic)
	for _, rec := range records {
		writeString(&buf, rec.Name)
		writeString(&buf, rec.Password)
		binary.Write(&buf, binary.LittleEndian, int32(rec.RoleID))
	}
	return buf.Bytes()
}

func writeString(buf *bytes.Buffer, s string) {
	binary.Write(buf, binary.LittleEndian, uint16(len(s)))
	buf.WriteString(s)
}

// FindUserByName looks up a record by case-insensitive name match,
// mirroring the adapter's lookup semantics described in spec §4.4.
func FindUserByName(records []UserRecord, name string) (UserRecord, bool) {
	for _, rec := range records {
		if strings.EqualFold(rec.Name, name) {
			return rec, true
		}
	}
	return UserRecord{}, false
}
