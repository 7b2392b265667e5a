package loaders

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spaghettifunk/multiview/engine/math"
	"github.com/spaghettifunk/multiview/engine/renderer/metadata"
)

const blanks = "\r\n\t "

// objDecoder holds the parse state of one OBJ stream.
type objDecoder struct {
	line      int
	positions []math.Vec3
	normals   []math.Vec3
	indices   []uint32
}

/**
 * @brief Parses a Wavefront OBJ stream into an indexed triangle list.
 * Only positions, normals and faces are read; polygons are fan triangulated
 * from their first corner. Vertices are white.
 * @param r The OBJ text.
 * @param name The name given to the geometry.
 */
func LoadOBJ(r io.Reader, name string) (*metadata.GeometryConfig, error) {
	dec := &objDecoder{}
	if err := dec.parse(r); err != nil {
		return nil, fmt.Errorf("obj '%s': %w", name, err)
	}

	white := math.NewVec4(1, 1, 1, 1)
	vertices := make([]math.Vertex3D, len(dec.positions))
	for i, p := range dec.positions {
		vertices[i] = math.Vertex3D{Position: p, Colour: white}
	}
	return metadata.NewGeometryConfig(name, vertices, dec.indices), nil
}

func (dec *objDecoder) parse(reader io.Reader) error {
	bufin := bufio.NewReader(reader)
	dec.line = 1
	for {
		// Reads next line and abort on errors (not EOF)
		line, err := bufin.ReadString('\n')
		if err != nil && err != io.EOF {
			return err
		}
		if perr := dec.parseLine(strings.Trim(line, blanks)); perr != nil {
			return perr
		}
		if err == io.EOF {
			break
		}
		dec.line++
	}
	return nil
}

func (dec *objDecoder) parseLine(line string) error {
	// Ignore empty lines and comments
	if len(line) == 0 || line[0] == '#' {
		return nil
	}
	fields := strings.Fields(line)
	ltype, fields := fields[0], fields[1:]
	switch ltype {
	case "v":
		p, err := dec.parseVec3(fields, "v")
		if err != nil {
			return err
		}
		dec.positions = append(dec.positions, p)
	case "vn":
		n, err := dec.parseVec3(fields, "vn")
		if err != nil {
			return err
		}
		dec.normals = append(dec.normals, n)
	case "f":
		return dec.parseFace(fields)
	}
	// vt, o, g, s, usemtl, mtllib and the rest carry nothing we draw.
	return nil
}

// v <x> <y> <z> [w]
func (dec *objDecoder) parseVec3(fields []string, ltype string) (math.Vec3, error) {
	if len(fields) < 3 {
		return math.Vec3{}, dec.formatError(fmt.Sprintf("less than 3 values in '%s' line", ltype))
	}
	var out [3]float32
	for i, f := range fields[:3] {
		val, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return math.Vec3{}, dec.wrapError(err)
		}
		out[i] = float32(val)
	}
	return math.NewVec3(out[0], out[1], out[2]), nil
}

// f v1[/vt1][/vn1] v2[/vt2][/vn2] v3[/vt3][/vn3] ...
func (dec *objDecoder) parseFace(fields []string) error {
	if len(fields) < 3 {
		return dec.formatError("face line with less than 3 fields")
	}

	corners := make([]uint32, len(fields))
	for pos, f := range fields {
		vfields := strings.Split(f, "/")
		idx, err := dec.resolveIndex(vfields[0], len(dec.positions), "vertex")
		if err != nil {
			return err
		}
		corners[pos] = idx

		// The normal index is optional; it is validated but not used.
		if len(vfields) > 2 && len(vfields[2]) > 0 {
			if _, err := dec.resolveIndex(vfields[2], len(dec.normals), "normal"); err != nil {
				return err
			}
		}
	}

	for i := 1; i < len(corners)-1; i++ {
		dec.indices = append(dec.indices, corners[0], corners[i], corners[i+1])
	}
	return nil
}

// resolveIndex turns a 1-based or negative (relative) OBJ index into a 0-based one.
func (dec *objDecoder) resolveIndex(field string, count int, what string) (uint32, error) {
	val, err := strconv.ParseInt(field, 10, 32)
	if err != nil {
		return 0, dec.wrapError(err)
	}

	var idx int
	switch {
	case val > 0:
		idx = int(val - 1)
	case val < 0:
		idx = count + int(val)
	default:
		return 0, dec.formatError(fmt.Sprintf("face %s index value equal to 0", what))
	}
	if idx < 0 || idx >= count {
		return 0, dec.formatError(fmt.Sprintf("face %s index %d out of range (%d defined)", what, val, count))
	}
	return uint32(idx), nil
}

func (dec *objDecoder) formatError(msg string) error {
	return fmt.Errorf("%s in line:%d: %w", msg, dec.line, ErrMalformedOBJ)
}

func (dec *objDecoder) wrapError(err error) error {
	return fmt.Errorf("%w in line:%d: %w", ErrMalformedOBJ, dec.line, err)
}

var ErrMalformedOBJ = errors.New("malformed obj")
