package obj

import (
	"io"
	"strconv"
	"strings"

	"github.com/binzume/objconv/logger"
	"go.uber.org/zap"
)

// number of arguments taken by texture map options. -o, -s and -t take 1 to 3.
var textureOptionArgs = map[string]int{
	"-blendu":  1,
	"-blendv":  1,
	"-bm":      1,
	"-boost":   1,
	"-cc":      1,
	"-clamp":   1,
	"-imfchan": 1,
	"-mm":      2,
	"-texres":  1,
	"-type":    1,
	"-o":       3,
	"-s":       3,
	"-t":       3,
}

type mtlParser struct {
	*Parser
	name    string
	current *MaterialRecord
	dSet    bool
}

func (p *mtlParser) parse(r io.Reader) error {
	return p.scanLines(r, p.parseMtlLine)
}

// textureRef strips map options and returns the file reference.
func textureRef(args []string) string {
	i := 0
	for i < len(args) && strings.HasPrefix(args[i], "-") {
		n, ok := textureOptionArgs[args[i]]
		if !ok {
			break
		}
		i++
		if args[i-1] == "-o" || args[i-1] == "-s" || args[i-1] == "-t" {
			for k := 0; k < n && i < len(args)-1; k++ {
				if _, err := strconv.ParseFloat(args[i], 32); err != nil {
					break
				}
				i++
			}
			continue
		}
		i += n
	}
	if i >= len(args) {
		return ""
	}
	return strings.Join(args[i:], " ")
}

func (p *mtlParser) color(args []string, dst *[3]float32) error {
	var c [3]float32
	n, err := parseFloats(args, c[:], 1)
	if err != nil {
		return p.syntaxError("color: %v", err)
	}
	if n == 1 {
		c[1], c[2] = c[0], c[0]
	}
	*dst = c
	return nil
}

func (p *mtlParser) scalar(args []string, dst *float32) error {
	var v [1]float32
	if _, err := parseFloats(args, v[:], 1); err != nil {
		return p.syntaxError("%v", err)
	}
	*dst = v[0]
	return nil
}

func (p *mtlParser) parseMtlLine(fields []string) error {
	key, args := fields[0], fields[1:]
	if key == "newmtl" {
		p.current = newMaterialRecord(strings.Join(args, " "))
		p.dSet = false
		p.materials = append(p.materials, p.current)
		return nil
	}
	m := p.current
	if m == nil {
		logger.Debug("mtl statement before newmtl", zap.String("file", p.name), zap.String("keyword", key))
		return nil
	}

	switch key {
	case "Ka":
		return p.color(args, &m.Ambient)
	case "Kd":
		return p.color(args, &m.Diffuse)
	case "Ks":
		return p.color(args, &m.Specular)
	case "Ke":
		return p.color(args, &m.Emissive)
	case "Ns":
		return p.scalar(args, &m.Shininess)
	case "Ni":
		return p.scalar(args, &m.OpticalDensity)
	case "d":
		if len(args) > 0 && args[0] == "-halo" {
			args = args[1:]
		}
		p.dSet = true
		return p.scalar(args, &m.Dissolve)
	case "Tr":
		var tr float32
		if err := p.scalar(args, &tr); err != nil {
			return err
		}
		if !p.dSet {
			m.Dissolve = 1 - tr
		}
	case "illum":
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return p.syntaxError("illum: %v", err)
			}
			m.Illum = n
		}
	case "map_Ka":
		m.AmbientTexture = textureRef(args)
	case "map_Kd":
		m.DiffuseTexture = textureRef(args)
	case "map_Ks":
		m.SpecularTexture = textureRef(args)
	case "map_Ns":
		m.ShininessTexture = textureRef(args)
	case "map_d":
		m.DissolveTexture = textureRef(args)
	case "map_Ke":
		m.EmissiveTexture = textureRef(args)
	case "map_Bump", "map_bump", "bump", "norm":
		m.NormalTexture = textureRef(args)
	default:
		logger.Debug("skip mtl statement", zap.String("file", p.name), zap.String("keyword", key))
	}
	return nil
}
