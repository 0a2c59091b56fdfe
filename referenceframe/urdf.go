package referenceframe

import (
	"encoding/xml"
	"math"
	"os"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// URDFConfig represents the supported fields in a Universal Robot Description Format (URDF) file.
type URDFConfig struct {
	XMLName xml.Name    `xml:"robot"`
	Name    string      `xml:"name,attr"`
	Links   []URDFLink  `xml:"link"`
	Joints  []URDFJoint `xml:"joint"`
}

// URDFLink is a struct which details the XML used in a URDF link element. Geometry is ignored.
type URDFLink struct {
	XMLName xml.Name `xml:"link"`
	Name    string   `xml:"name,attr"`
}

// URDFJoint is a struct which details the XML used in a URDF joint element.
type URDFJoint struct {
	XMLName xml.Name `xml:"joint"`
	Name    string   `xml:"name,attr"`
	Type    string   `xml:"type,attr"`
	Parent  frame    `xml:"parent"`
	Child   frame    `xml:"child"`
	Origin  *pose    `xml:"origin,omitempty"`
	Axis    *axis    `xml:"axis,omitempty"`
	Limit   *limit   `xml:"limit,omitempty"`
}

// ParseURDFFile will read a given file and parse the contained URDF XML data into a SerialChain.
func ParseURDFFile(filename, modelName string) (*SerialChain, error) {
	//nolint:gosec
	xmlData, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to read URDF file")
	}
	return UnmarshalURDF(xmlData, modelName)
}

// UnmarshalURDF converts URDF XML data into a SerialChain. Each link becomes a reference frame at
// the link origin; the chain must not branch.
func UnmarshalURDF(xmlData []byte, modelName string) (*SerialChain, error) {
	// empty data probably means that the read URDF has no actionable information
	if len(xmlData) == 0 {
		return nil, ErrNoModelInformation
	}

	urdf := &URDFConfig{}
	if err := xml.Unmarshal(xmlData, urdf); err != nil {
		return nil, errors.Wrap(err, "Failed to convert URDF data to equivalent URDFConfig struct")
	}
	if modelName == "" {
		modelName = urdf.Name
	}

	transforms := map[string]Frame{}
	parentMap := map[string]string{}

	for _, jointElem := range urdf.Joints {
		if jointElem.Name == World {
			return nil, NewReservedWordError("joint", World)
		}
		origin, err := jointElem.Origin.Parse()
		if err != nil {
			return nil, errors.Wrapf(err, "joint %q", jointElem.Name)
		}

		if jointElem.Type == FixedJoint {
			// a fixed joint is folded into a static frame for its child link
			transforms[jointElem.Child.Link], err = NewStaticFrame(jointElem.Child.Link, origin)
			if err != nil {
				return nil, err
			}
			parentMap[jointElem.Child.Link] = jointElem.Parent.Link
			continue
		}

		jointAxis, err := jointElem.Axis.Parse()
		if err != nil {
			return nil, errors.Wrapf(err, "joint %q", jointElem.Name)
		}
		lim := Limit{Min: math.Inf(-1), Max: math.Inf(1)}
		var maxSpeed float64
		if jointElem.Limit != nil {
			maxSpeed = jointElem.Limit.Velocity
			if jointElem.Type != ContinuousJoint {
				lim = Limit{Min: jointElem.Limit.Lower, Max: jointElem.Limit.Upper}
			}
		}

		var j Joint
		switch jointElem.Type {
		case RevoluteJoint, ContinuousJoint:
			j, err = NewRotationalFrame(jointElem.Name, origin, jointAxis, lim, maxSpeed)
		case PrismaticJoint:
			j, err = NewTranslationalFrame(jointElem.Name, origin, jointAxis, lim, maxSpeed)
		default:
			return nil, NewUnsupportedJointTypeError(jointElem.Type)
		}
		if err != nil {
			return nil, err
		}
		transforms[jointElem.Name] = j
		parentMap[jointElem.Name] = jointElem.Parent.Link
		transforms[jointElem.Child.Link] = NewZeroStaticFrame(jointElem.Child.Link)
		parentMap[jointElem.Child.Link] = jointElem.Name
	}

	// the root link is the only one that is never a child
	roots := lo.Filter(urdf.Links, func(l URDFLink, _ int) bool {
		_, ok := parentMap[l.Name]
		return !ok && l.Name != World
	})
	for _, root := range roots {
		transforms[root.Name] = NewZeroStaticFrame(root.Name)
		parentMap[root.Name] = World
	}

	ot, err := sortTransforms(transforms, parentMap)
	if err != nil {
		return nil, err
	}
	return NewSerialChain(modelName, ot)
}
