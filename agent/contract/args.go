package contract

import (
	"fmt"
	"strings"
	"time"
)

// LoungeQuery is the decoded parameter set of get_available_lounges.
type LoungeQuery struct {
	AirportCode string
	Terminal    string
	Amenities   []string
}

// DecodeLoungeQuery validates get_available_lounges args from the model.
func DecodeLoungeQuery(args map[string]any) (LoungeQuery, error) {
	code, err := stringArg(args, "airport_code", true)
	if err != nil {
		return LoungeQuery{}, err
	}
	terminal, err := stringArg(args, "terminal", false)
	if err != nil {
		return LoungeQuery{}, err
	}

	var amenities []string
	if raw, ok := args["amenities"]; ok && raw != nil {
		list, ok := raw.([]any)
		if !ok {
			return LoungeQuery{}, fmt.Errorf("%w: amenities must be a string array", ErrValidation)
		}
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return LoungeQuery{}, fmt.Errorf("%w: amenities must be a string array", ErrValidation)
			}
			if s = strings.TrimSpace(s); s != "" {
				amenities = append(amenities, s)
			}
		}
	}

	return LoungeQuery{AirportCode: code, Terminal: terminal, Amenities: amenities}, nil
}

// DecodeSelection validates store_lounge_info args from the model.
func DecodeSelection(args map[string]any) (SelectionRequest, error) {
	loungeID, err := stringArg(args, "lounge_id", true)
	if err != nil {
		return SelectionRequest{}, err
	}
	loungeName, err := stringArg(args, "lounge_name", true)
	if err != nil {
		return SelectionRequest{}, err
	}
	arrival, err := timeArg(args, "arrival_time")
	if err != nil {
		return SelectionRequest{}, err
	}
	return SelectionRequest{LoungeID: loungeID, LoungeName: loungeName, ArrivalTime: arrival}, nil
}

// DecodeBookingRequest validates book_lounge args from the model.
func DecodeBookingRequest(args map[string]any) (BookingRequest, error) {
	userID, err := stringArg(args, "user_id", true)
	if err != nil {
		return BookingRequest{}, err
	}
	loungeID, err := stringArg(args, "lounge_id", true)
	if err != nil {
		return BookingRequest{}, err
	}
	flightNumber, err := stringArg(args, "flight_number", true)
	if err != nil {
		return BookingRequest{}, err
	}
	arrival, err := timeArg(args, "arrival_time")
	if err != nil {
		return BookingRequest{}, err
	}
	return BookingRequest{
		UserID:       userID,
		LoungeID:     loungeID,
		FlightNumber: flightNumber,
		ArrivalTime:  arrival,
	}, nil
}

func stringArg(args map[string]any, key string, required bool) (string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		if required {
			return "", fmt.Errorf("%w: %s is required", ErrValidation, key)
		}
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", ErrValidation, key)
	}
	s = strings.TrimSpace(s)
	if required && s == "" {
		return "", fmt.Errorf("%w: %s is required", ErrValidation, key)
	}
	return s, nil
}

func timeArg(args map[string]any, key string) (time.Time, error) {
	raw, err := stringArg(args, key, true)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be ISO-8601: %v", ErrValidation, key, err)
	}
	return t, nil
}
