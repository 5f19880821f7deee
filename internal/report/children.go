package report

// children.go normalizes the detail collections that hang off the
// corrective-maintenance and RTU preventive-maintenance reports. These are
// not registry components: each is created through its own backend endpoint
// carrying the specialized report id as a foreign key, so the orchestrator
// addresses them by name.

import "encoding/json"

// Child collection names, used as entity names on the create calls.
const (
	ChildMaterialUsed   = "material-used"
	ChildMainRTUCabinet = "main-rtu-cabinet"
	ChildChamberContact = "chamber-magnetic-contact"
	ChildCabinetCooling = "rtu-cabinet-cooling"
	ChildDVREquipment   = "dvr-equipment"
)

// NormalizeMaterialUsed converts the material-used rows collected on a
// corrective-maintenance form. Rows with no user-entered content are
// dropped.
func NormalizeMaterialUsed(raw json.RawMessage) ([]DetailRow, error) {
	_, rows, err := decodeList(raw, "materials")
	if err != nil {
		return nil, err
	}
	return buildDetails(rows, nil, func(r rawRow, _ *ReferenceSet) (DetailRow, error) {
		return DetailRow{
			Description: r.str("description"),
			Quantity:    r.str("quantity"),
			Remarks:     r.str("remarks"),
		}, nil
	})
}

// NormalizeMainRTUCabinet converts the main cabinet inspection rows of an
// RTU preventive-maintenance form.
func NormalizeMainRTUCabinet(raw json.RawMessage, refs *ReferenceSet) ([]DetailRow, error) {
	_, rows, err := decodeList(raw, "items")
	if err != nil {
		return nil, err
	}
	return buildDetails(rows, refs, func(r rawRow, refs *ReferenceSet) (DetailRow, error) {
		id, err := resolveStatus(refs.ResultStatuses, "result", r.str("result"))
		if err != nil {
			return DetailRow{}, err
		}
		return DetailRow{
			MachineName:    r.str("machineName"),
			Description:    r.str("description"),
			ResultStatusID: id,
			Remarks:        r.str("remarks"),
		}, nil
	})
}

// NormalizeChamberContact converts the chamber magnetic-contact rows. The
// chamber number is user-assigned and preserved; it is not renumbered.
func NormalizeChamberContact(raw json.RawMessage, refs *ReferenceSet) ([]DetailRow, error) {
	_, rows, err := decodeList(raw, "chambers")
	if err != nil {
		return nil, err
	}
	return buildDetails(rows, refs, func(r rawRow, refs *ReferenceSet) (DetailRow, error) {
		id, err := resolveStatus(refs.ResultStatuses, "result", r.str("result"))
		if err != nil {
			return DetailRow{}, err
		}
		return DetailRow{
			ChamberNumber:  r.str("chamberNumber"),
			ResultStatusID: id,
			Remarks:        r.str("remarks"),
		}, nil
	})
}

// NormalizeCabinetCooling converts the cabinet cooling-fan rows. The fan
// number is user-assigned and preserved.
func NormalizeCabinetCooling(raw json.RawMessage, refs *ReferenceSet) ([]DetailRow, error) {
	_, rows, err := decodeList(raw, "fans")
	if err != nil {
		return nil, err
	}
	return buildDetails(rows, refs, func(r rawRow, refs *ReferenceSet) (DetailRow, error) {
		id, err := resolveStatus(refs.ResultStatuses, "result", r.str("result"))
		if err != nil {
			return DetailRow{}, err
		}
		return DetailRow{
			FanNumber:      r.str("fanNumber"),
			ResultStatusID: id,
			Remarks:        r.str("remarks"),
		}, nil
	})
}

// NormalizeDVREquipment converts the DVR equipment rows.
func NormalizeDVREquipment(raw json.RawMessage, refs *ReferenceSet) ([]DetailRow, error) {
	_, rows, err := decodeList(raw, "items")
	if err != nil {
		return nil, err
	}
	return buildDetails(rows, refs, func(r rawRow, refs *ReferenceSet) (DetailRow, error) {
		id, err := resolveStatus(refs.ResultStatuses, "result", r.str("result"))
		if err != nil {
			return DetailRow{}, err
		}
		return DetailRow{
			MachineName:    r.str("machineName"),
			ResultStatusID: id,
			Remarks:        r.str("remarks"),
		}, nil
	})
}
