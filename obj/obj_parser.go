package obj

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/binzume/objconv/geom"
	"github.com/binzume/objconv/logger"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// Parser for obj file.
type Parser struct {
	name string
	opts LoadOptions
	// Open is used to read material libraries referenced by mtllib.
	Open func(name string) (io.ReadCloser, error)

	positions [][3]float32
	normals   [][3]float32
	texcoords [][2]float32

	groups  []*group
	current *group
	objName string
	mtlName string

	materials   []*MaterialRecord
	materialErr error
	line        int
}

type corner struct {
	v, vt, vn int // -1 if absent
}

type group struct {
	name     string
	material string
	tris     [][3]corner
}

// NewParser returns new parser. path is used to resolve material libraries.
func NewParser(path string, opts *LoadOptions) *Parser {
	p := &Parser{name: path}
	if opts != nil {
		p.opts = *opts
	}
	dir := filepath.Dir(path)
	p.Open = func(name string) (io.ReadCloser, error) {
		return os.Open(ResolvePath(dir, name))
	}
	return p
}

func (p *Parser) decodeReader(r io.Reader) (io.Reader, error) {
	enc := strings.ToLower(p.opts.Encoding)
	if enc == "" || enc == "utf-8" || enc == "utf8" {
		return r, nil
	}
	e, err := htmlindex.Get(enc)
	if err != nil {
		return nil, errors.Wrapf(err, "obj: encoding %q", p.opts.Encoding)
	}
	return transform.NewReader(r, e.NewDecoder()), nil
}

// scanLines calls fn for each non-empty, non-comment statement. Lines ending with '\' are joined.
func (p *Parser) scanLines(r io.Reader, fn func(fields []string) error) error {
	r, err := p.decodeReader(r)
	if err != nil {
		return err
	}
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 16*1024*1024)
	var pending string
	p.line = 0
	for s.Scan() {
		p.line++
		text := strings.TrimRight(s.Text(), " \t\r")
		if p.line == 1 {
			text = strings.TrimPrefix(text, "\ufeff")
		}
		if strings.HasSuffix(text, "\\") {
			pending += text[:len(text)-1] + " "
			continue
		}
		text = pending + text
		pending = ""
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		if err := fn(fields); err != nil {
			return err
		}
	}
	if err := s.Err(); err != nil {
		return err
	}
	if pending != "" {
		if fields := strings.Fields(pending); len(fields) > 0 {
			return fn(fields)
		}
	}
	return nil
}

func (p *Parser) syntaxError(format string, args ...interface{}) error {
	return errors.Wrapf(ErrSyntax, "%s:%d: %s", p.name, p.line, fmt.Sprintf(format, args...))
}

func parseFloats(fields []string, dst []float32, required int) (int, error) {
	n := 0
	for ; n < len(dst) && n < len(fields); n++ {
		f, err := strconv.ParseFloat(fields[n], 32)
		if err != nil {
			return n, err
		}
		dst[n] = float32(f)
	}
	if n < required {
		return n, fmt.Errorf("expected %d numbers, got %d", required, n)
	}
	return n, nil
}

// Parse reads an obj stream.
func (p *Parser) Parse(r io.Reader) (*Result, error) {
	err := p.scanLines(r, p.parseObjLine)
	if err != nil {
		return nil, err
	}
	return p.build()
}

func (p *Parser) parseObjLine(fields []string) error {
	args := fields[1:]
	switch fields[0] {
	case "v":
		var v [3]float32
		if _, err := parseFloats(args, v[:], 3); err != nil {
			return p.syntaxError("v: %v", err)
		}
		p.positions = append(p.positions, v)
	case "vn":
		var v [3]float32
		if _, err := parseFloats(args, v[:], 3); err != nil {
			return p.syntaxError("vn: %v", err)
		}
		p.normals = append(p.normals, v)
	case "vt":
		var v [2]float32
		if _, err := parseFloats(args, v[:], 1); err != nil {
			return p.syntaxError("vt: %v", err)
		}
		p.texcoords = append(p.texcoords, v)
	case "f":
		return p.parseFace(args)
	case "o", "g":
		p.objName = strings.Join(args, " ")
		p.current = nil
	case "usemtl":
		p.mtlName = strings.Join(args, " ")
		p.current = nil
	case "mtllib":
		p.loadMaterialLibs(args)
	case "s", "l", "p":
		// smoothing groups, lines and points are ignored
	default:
		logger.Debug("skip obj statement", zap.String("keyword", fields[0]), zap.Int("line", p.line))
	}
	return nil
}

func (p *Parser) resolveIndex(s string, count int) (int, error) {
	if s == "" {
		return -1, nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if i < 0 {
		i += count
	} else {
		i--
	}
	if i < 0 || i >= count {
		return 0, fmt.Errorf("index %s out of range (%d defined)", s, count)
	}
	return i, nil
}

func (p *Parser) parseCorner(tok string) (corner, error) {
	parts := strings.Split(tok, "/")
	if len(parts) > 3 {
		return corner{}, fmt.Errorf("invalid vertex %q", tok)
	}
	for len(parts) < 3 {
		parts = append(parts, "")
	}
	var c corner
	var err error
	if c.v, err = p.resolveIndex(parts[0], len(p.positions)); err != nil {
		return c, err
	}
	if c.v < 0 {
		return c, fmt.Errorf("vertex %q without position", tok)
	}
	if c.vt, err = p.resolveIndex(parts[1], len(p.texcoords)); err != nil {
		return c, err
	}
	if c.vn, err = p.resolveIndex(parts[2], len(p.normals)); err != nil {
		return c, err
	}
	return c, nil
}

func (p *Parser) parseFace(args []string) error {
	if len(args) < 3 {
		return p.syntaxError("f: expected at least 3 vertices, got %d", len(args))
	}
	corners := make([]corner, len(args))
	for i, tok := range args {
		c, err := p.parseCorner(tok)
		if err != nil {
			return p.syntaxError("f: %v", err)
		}
		corners[i] = c
	}

	if p.current == nil {
		p.current = &group{name: p.objName, material: p.mtlName}
		p.groups = append(p.groups, p.current)
	}

	if len(corners) == 3 {
		p.current.tris = append(p.current.tris, [3]corner{corners[0], corners[1], corners[2]})
		return nil
	}
	poly := make([]*geom.Vector3, len(corners))
	for i, c := range corners {
		poly[i] = geom.NewVector3FromArray(p.positions[c.v])
	}
	for _, t := range geom.Triangulate(poly) {
		p.current.tris = append(p.current.tris, [3]corner{corners[t[0]], corners[t[1]], corners[t[2]]})
	}
	return nil
}

// loadMaterialLibs reads the rest of the line as one file name first, then as a list of names.
func (p *Parser) loadMaterialLibs(args []string) {
	if len(args) > 1 {
		if err := p.loadMaterialLib(strings.Join(args, " ")); err == nil {
			return
		}
	}
	for _, lib := range args {
		if err := p.loadMaterialLib(lib); err != nil {
			logger.Warn("material library not loaded", zap.String("mtllib", lib), zap.Error(err))
			if p.materialErr == nil {
				p.materialErr = err
			}
		}
	}
}

func (p *Parser) loadMaterialLib(name string) error {
	r, err := p.Open(name)
	if err != nil {
		return err
	}
	defer r.Close()
	mp := &mtlParser{Parser: p, name: name}
	line, count := p.line, len(p.materials)
	defer func() { p.line = line }()
	if err := mp.parse(r); err != nil {
		p.materials = p.materials[:count]
		return err
	}
	return nil
}

func (p *Parser) build() (*Result, error) {
	res := &Result{Materials: p.materials, MaterialErr: p.materialErr}
	materialByName := map[string]int{}
	for i, m := range p.materials {
		if _, exists := materialByName[m.Name]; !exists {
			materialByName[m.Name] = i
		}
	}

	for _, g := range p.groups {
		if len(g.tris) == 0 {
			continue
		}
		rec := &MeshRecord{Name: g.name, MaterialName: g.material}
		if rec.Name == "" {
			rec.Name = "default"
		}
		if id, ok := materialByName[g.material]; ok && g.material != "" {
			rec.MaterialID = &id
		}
		var indices []uint32
		if p.opts.SingleIndex {
			indices = p.buildShared(rec, g)
		} else {
			indices = p.buildExpanded(rec, g)
		}
		if p.opts.Index16 && len(rec.Positions)/3 <= 0x10000 {
			rec.Indices16 = make([]uint16, len(indices))
			for i, v := range indices {
				rec.Indices16[i] = uint16(v)
			}
		} else {
			if p.opts.Index16 {
				logger.Warn("too many vertices for 16-bit indices", zap.String("mesh", rec.Name), zap.Int("vertices", len(rec.Positions)/3))
			}
			rec.Indices = indices
		}
		res.Meshes = append(res.Meshes, rec)
	}
	return res, nil
}

func (p *Parser) hasAttributes(g *group) (hasUV, hasNormal bool) {
	for _, t := range g.tris {
		for _, c := range t {
			hasUV = hasUV || c.vt >= 0
			hasNormal = hasNormal || c.vn >= 0
		}
	}
	return
}

func (p *Parser) appendVertex(rec *MeshRecord, c corner, hasUV, hasNormal bool) {
	v := p.positions[c.v]
	rec.Positions = append(rec.Positions, v[0], v[1], v[2])
	if hasNormal {
		var n [3]float32
		if c.vn >= 0 {
			n = p.normals[c.vn]
		}
		rec.Normals = append(rec.Normals, n[0], n[1], n[2])
	}
	if hasUV {
		var uv [2]float32
		if c.vt >= 0 {
			uv = p.texcoords[c.vt]
		}
		rec.TexCoords = append(rec.TexCoords, uv[0], uv[1])
	}
}

// buildExpanded emits one vertex per face corner.
func (p *Parser) buildExpanded(rec *MeshRecord, g *group) []uint32 {
	hasUV, hasNormal := p.hasAttributes(g)
	indices := make([]uint32, 0, len(g.tris)*3)
	for _, t := range g.tris {
		for _, c := range t {
			indices = append(indices, uint32(len(indices)))
			p.appendVertex(rec, c, hasUV, hasNormal)
		}
	}
	return indices
}

// buildShared emits one vertex per distinct corner.
func (p *Parser) buildShared(rec *MeshRecord, g *group) []uint32 {
	hasUV, hasNormal := p.hasAttributes(g)
	vertexMap := map[corner]uint32{}
	indices := make([]uint32, 0, len(g.tris)*3)
	for _, t := range g.tris {
		for _, c := range t {
			vi, ok := vertexMap[c]
			if !ok {
				vi = uint32(len(vertexMap))
				vertexMap[c] = vi
				p.appendVertex(rec, c, hasUV, hasNormal)
			}
			indices = append(indices, vi)
		}
	}
	return indices
}
