package tool

import (
	"github.com/cloudwego/eino/schema"

	contractx "github.com/travel-buddy/lounge-agent/agent/contract"
	stagex "github.com/travel-buddy/lounge-agent/agent/stage"
	statex "github.com/travel-buddy/lounge-agent/agent/state"
)

// BuildForStage returns the tool definitions the assistant may call during
// the given stage. The whitelist is the single source of truth; a stage
// without tools gets nil so the model is bound with none.
func BuildForStage(stage statex.Stage) []*schema.ToolInfo {
	names := stagex.AdmissibleTools(stage)
	if len(names) == 0 {
		return nil
	}
	infos := make([]*schema.ToolInfo, 0, len(names))
	for _, name := range names {
		if info, ok := toolInfos[name]; ok {
			infos = append(infos, info)
		}
	}
	return infos
}

var toolInfos = map[string]*schema.ToolInfo{
	contractx.ToolCheckFlightDocument: {
		Name: contractx.ToolCheckFlightDocument,
		Desc: "Extract flight details from the traveller's uploaded boarding pass or ticket image.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"image_base64": {Type: schema.String, Desc: "Base64-encoded ticket image", Required: true},
		}),
	},
	contractx.ToolGetAvailableLounges: {
		Name: contractx.ToolGetAvailableLounges,
		Desc: "List VIP lounges at an airport, optionally filtered by terminal and required amenities.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"airport_code": {Type: schema.String, Desc: "IATA airport code, e.g. SZX", Required: true},
			"terminal":     {Type: schema.String, Desc: "Terminal filter, e.g. T3"},
			"amenities":    {Type: schema.Array, Desc: "Amenities the lounge must offer", ElemInfo: &schema.ParameterInfo{Type: schema.String}},
		}),
	},
	contractx.ToolCheckMembershipPoints: {
		Name: contractx.ToolCheckMembershipPoints,
		Desc: "Look up the traveller's membership profile and current points balance.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"user_id": {Type: schema.String, Desc: "Member identifier", Required: true},
		}),
	},
	contractx.ToolStoreLoungeInfo: {
		Name: contractx.ToolStoreLoungeInfo,
		Desc: "Record the lounge the traveller has chosen together with their planned arrival time.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"lounge_id":    {Type: schema.String, Desc: "Catalog id of the chosen lounge", Required: true},
			"lounge_name":  {Type: schema.String, Desc: "Display name of the chosen lounge", Required: true},
			"arrival_time": {Type: schema.String, Desc: "Planned arrival time, ISO-8601", Required: true},
		}),
	},
	contractx.ToolBookLounge: {
		Name: contractx.ToolBookLounge,
		Desc: "Book the confirmed lounge for the traveller and deduct the points cost.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"user_id":       {Type: schema.String, Desc: "Member identifier", Required: true},
			"lounge_id":     {Type: schema.String, Desc: "Catalog id of the confirmed lounge", Required: true},
			"flight_number": {Type: schema.String, Desc: "Flight number, e.g. CZ3456", Required: true},
			"arrival_time":  {Type: schema.String, Desc: "Planned arrival time, ISO-8601", Required: true},
		}),
	},
}
