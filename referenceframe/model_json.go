package referenceframe

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"golang.org/x/exp/maps"

	"github.com/JRL-CARI-CNR-UNIBS/human-aware-cost-functions/spatialmath"
)

// ModelConfigJSON represents all supported fields in a kinematics JSON file.
type ModelConfigJSON struct {
	Name         string        `json:"name"`
	KinParamType string        `json:"kinematic_param_type,omitempty"`
	Links        []LinkConfig  `json:"links,omitempty"`
	Joints       []JointConfig `json:"joints,omitempty"`
}

// LinkConfig is a static transform from a parent frame. Distances are in meters.
type LinkConfig struct {
	ID          string            `json:"id"`
	Parent      string            `json:"parent,omitempty"`
	Translation r3.Vector         `json:"translation"`
	Orientation *spatialmath.R4AA `json:"orientation,omitempty"`
}

// JointConfig is a single degree of freedom joint. Revolute limits and speeds are in radians,
// prismatic ones in meters.
type JointConfig struct {
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	Parent   string    `json:"parent"`
	Axis     r3.Vector `json:"axis"`
	Min      float64   `json:"min"`
	Max      float64   `json:"max"`
	MaxSpeed float64   `json:"max_speed"`
}

// UnmarshalModelJSON will parse the given JSON data into a kinematic chain. modelName sets the name of the model,
// will use the name from the JSON if string is empty.
func UnmarshalModelJSON(jsonData []byte, modelName string) (*SerialChain, error) {
	// empty data probably means that the robot component has no model information
	if len(jsonData) == 0 {
		return nil, ErrNoModelInformation
	}

	m := &ModelConfigJSON{}
	if err := json.Unmarshal(jsonData, m); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal json file")
	}

	return m.ParseConfig(modelName)
}

// ParseModelJSONFile will read a given file and then parse the contained JSON data.
func ParseModelJSONFile(filename, modelName string) (*SerialChain, error) {
	//nolint:gosec
	jsonData, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read json file")
	}
	return UnmarshalModelJSON(jsonData, modelName)
}

// ParseConfig converts the ModelConfigJSON struct into a SerialChain with the name modelName.
func (cfg *ModelConfigJSON) ParseConfig(modelName string) (*SerialChain, error) {
	if modelName == "" {
		modelName = cfg.Name
	}
	switch cfg.KinParamType {
	case "SVA", "":
	default:
		return nil, errors.Errorf("unsupported param type: %s, supported params are SVA", cfg.KinParamType)
	}

	transforms := map[string]Frame{}
	// Make a map of parents for each element for post-process, to allow items to be processed out of order
	parentMap := map[string]string{}

	for _, link := range cfg.Links {
		if link.ID == World {
			return nil, NewReservedWordError("link", World)
		}
		frame, err := link.ToFrame()
		if err != nil {
			return nil, err
		}
		parentMap[link.ID] = link.Parent
		transforms[link.ID] = frame
	}

	for _, joint := range cfg.Joints {
		if joint.ID == World {
			return nil, NewReservedWordError("joint", World)
		}
		frame, err := joint.ToFrame()
		if err != nil {
			return nil, err
		}
		parentMap[joint.ID] = joint.Parent
		transforms[joint.ID] = frame
	}

	ot, err := sortTransforms(transforms, parentMap)
	if err != nil {
		return nil, err
	}
	return NewSerialChain(modelName, ot)
}

// ToFrame converts a LinkConfig into a static frame.
func (cfg *LinkConfig) ToFrame() (Frame, error) {
	if cfg.Orientation == nil || cfg.Orientation.Theta == 0 {
		return NewStaticFrame(cfg.ID, spatialmath.NewPoseFromPoint(cfg.Translation))
	}
	aa := *cfg.Orientation
	if aa.RX == 0 && aa.RY == 0 && aa.RZ == 0 {
		return nil, errors.Errorf("link %q has an orientation with a zero axis", cfg.ID)
	}
	return NewStaticFrame(cfg.ID, spatialmath.NewPose(cfg.Translation, &aa))
}

// ToFrame converts a JointConfig into a joint frame.
func (cfg *JointConfig) ToFrame() (Joint, error) {
	limit := Limit{Min: cfg.Min, Max: cfg.Max}
	switch cfg.Type {
	case RevoluteJoint:
		return NewRotationalFrame(cfg.ID, nil, cfg.Axis, limit, cfg.MaxSpeed)
	case ContinuousJoint:
		return NewRotationalFrame(cfg.ID, nil, cfg.Axis, Limit{Min: math.Inf(-1), Max: math.Inf(1)}, cfg.MaxSpeed)
	case PrismaticJoint:
		return NewTranslationalFrame(cfg.ID, nil, cfg.Axis, limit, cfg.MaxSpeed)
	default:
		return nil, NewUnsupportedJointTypeError(cfg.Type)
	}
}

// Create an ordered list of transforms given a mapping of child to parent frames.
func sortTransforms(transforms map[string]Frame, parents map[string]string) ([]Frame, error) {
	// find the end effector first - determine which transforms have no children
	// copy the map of children -> parents
	ees := map[string]string{}
	for child, parent := range parents {
		ees[child] = parent
	}
	// now remove all parents
	for _, parent := range parents {
		delete(ees, parent)
	}
	// ensure there is only on end effector
	if len(ees) != 1 {
		return nil, fmt.Errorf("%w, have %v", ErrNeedOneEndEffector, ees)
	}

	// start the search from the end effector
	curr := maps.Keys(ees)[0]
	seen := map[string]bool{curr: true}
	orderedTransforms := []Frame{}
	for i := 0; i < len(parents); i++ {
		frame, ok := transforms[curr]
		if !ok {
			return nil, NewFrameNotInListOfTransformsError(curr)
		}
		orderedTransforms = append(orderedTransforms, frame)

		parent, ok := parents[curr]
		if !ok {
			return nil, NewParentFrameNotInMapOfParentsError(curr)
		}
		if parent == World || parent == "" {
			break
		}

		// make sure it wasn't seen, mark it seen, then add it to the list
		if seen[parent] {
			return nil, ErrCircularReference
		}
		seen[parent] = true
		curr = parent
	}
	if len(orderedTransforms) != len(parents) {
		return nil, errors.Errorf("%d frames are not connected to the chain", len(parents)-len(orderedTransforms))
	}

	// the transforms are in reverse order, so we reverse the list.
	for i, j := 0, len(orderedTransforms)-1; i < j; i, j = i+1, j-1 {
		orderedTransforms[i], orderedTransforms[j] = orderedTransforms[j], orderedTransforms[i]
	}
	return orderedTransforms, nil
}
