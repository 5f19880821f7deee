package report

// components.go defines every inspection component of the server
// preventive-maintenance checklist and registers its normalizer. Adding a
// component means adding a definition here; the orchestrator dispatches
// purely through the registry.

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Registered component names. These are the tags used by the UI state.
const (
	CompServerRoomTemperature = "serverRoomTemperature"
	CompColdStartServer       = "coldStartServer"
	CompLogArchival           = "logArchival"
	CompHardDriveHealth       = "hardDriveHealth"
	CompTimeSync              = "timeSync"
	CompWindowsEventLog       = "windowsEventLog"
	CompAntivirusUpdate       = "antivirusUpdate"
	CompSecurityPatch         = "securityPatch"
	CompUPSBattery            = "upsBattery"
	CompServiceStatus         = "serviceStatus"
	CompNetworkSwitchHealth   = "networkSwitchHealth"
	CompCCTVCamera            = "cctvCamera"
	CompASAFirewall           = "asaFirewall"
	CompAutoFailover          = "autoFailover"
	CompDiskUsage             = "diskUsage"
	CompCPUAndRAMUsage        = "cpuAndRamUsage"
	CompDatabaseBackup        = "databaseBackup"
	CompMonthlyDatabase       = "monthlyDatabaseCreation"
)

// Named list keys produced by the compound components.
const (
	ListMemoryUsage = "memoryUsage"
	ListCPUUsage    = "cpuUsage"
	ListMSSQL       = "mssql"
	ListSCADA       = "scada"
)

// Shipped defaults. A section whose rows still equal these templates with no
// completion status and no remarks holds no user-entered data and is
// suppressed from submission.
var (
	asaFirewallDefaultCommands = []string{"show failover", "show environment"}

	autoFailoverDefaultPair = DetailRow{
		SourceServer:      "SCADA Server 1",
		DestinationServer: "SCADA Server 2",
	}
)

func init() {
	RegisterComponent(ComponentDefinition{
		Name:      CompServerRoomTemperature,
		Label:     "Server Room Temperature",
		Normalize: flatNormalizer(),
	})
	RegisterComponent(ComponentDefinition{
		Name:      CompColdStartServer,
		Label:     "Cold Start Server",
		Normalize: flatNormalizer(),
	})
	RegisterComponent(ComponentDefinition{
		Name:      CompLogArchival,
		Label:     "Log Archival",
		Normalize: flatNormalizer(),
	})

	RegisterComponent(ComponentDefinition{
		Name:  CompHardDriveHealth,
		Label: "Hard Drive Health",
		Normalize: listNormalizer("servers", func(r rawRow, refs *ReferenceSet) (DetailRow, error) {
			id, err := resolveStatus(refs.ResultStatuses, "result", r.str("result"))
			if err != nil {
				return DetailRow{}, err
			}
			return DetailRow{
				ServerName:     r.str("serverName"),
				ResultStatusID: id,
				Remarks:        r.str("remarks"),
			}, nil
		}),
	})
	RegisterComponent(ComponentDefinition{
		Name:  CompTimeSync,
		Label: "Server Time Synchronization",
		Normalize: listNormalizer("servers", func(r rawRow, refs *ReferenceSet) (DetailRow, error) {
			id, err := resolveStatus(refs.ResultStatuses, "result", r.str("result"))
			if err != nil {
				return DetailRow{}, err
			}
			return DetailRow{
				ServerName:     r.str("serverName"),
				ResultStatusID: id,
				Remarks:        r.str("remarks"),
			}, nil
		}),
	})
	RegisterComponent(ComponentDefinition{
		Name:  CompWindowsEventLog,
		Label: "Windows Event Log Review",
		Normalize: listNormalizer("servers", func(r rawRow, refs *ReferenceSet) (DetailRow, error) {
			id, err := resolveStatus(refs.YesNoStatuses, "done", r.str("done"))
			if err != nil {
				return DetailRow{}, err
			}
			return DetailRow{
				ServerName:    r.str("serverName"),
				YesNoStatusID: id,
				Remarks:       r.str("remarks"),
			}, nil
		}),
	})
	RegisterComponent(ComponentDefinition{
		Name:  CompAntivirusUpdate,
		Label: "Antivirus Definition Update",
		Normalize: listNormalizer("servers", func(r rawRow, refs *ReferenceSet) (DetailRow, error) {
			id, err := resolveStatus(refs.YesNoStatuses, "done", r.str("done"))
			if err != nil {
				return DetailRow{}, err
			}
			return DetailRow{
				ServerName:    r.str("serverName"),
				YesNoStatusID: id,
				Remarks:       r.str("remarks"),
			}, nil
		}),
	})
	RegisterComponent(ComponentDefinition{
		Name:  CompSecurityPatch,
		Label: "Windows Security Patch",
		Normalize: listNormalizer("servers", func(r rawRow, refs *ReferenceSet) (DetailRow, error) {
			id, err := resolveStatus(refs.YesNoStatuses, "done", r.str("done"))
			if err != nil {
				return DetailRow{}, err
			}
			return DetailRow{
				ServerName:    r.str("serverName"),
				YesNoStatusID: id,
				Remarks:       r.str("remarks"),
			}, nil
		}),
	})
	RegisterComponent(ComponentDefinition{
		Name:  CompUPSBattery,
		Label: "UPS Battery Condition",
		Normalize: listNormalizer("units", func(r rawRow, refs *ReferenceSet) (DetailRow, error) {
			id, err := resolveStatus(refs.ResultStatuses, "result", r.str("result"))
			if err != nil {
				return DetailRow{}, err
			}
			return DetailRow{
				MachineName:    r.str("machineName"),
				ResultStatusID: id,
				Remarks:        r.str("remarks"),
			}, nil
		}),
	})
	RegisterComponent(ComponentDefinition{
		Name:  CompServiceStatus,
		Label: "SCADA Service Status",
		Normalize: listNormalizer("services", func(r rawRow, refs *ReferenceSet) (DetailRow, error) {
			id, err := resolveStatus(refs.ResultStatuses, "result", r.str("result"))
			if err != nil {
				return DetailRow{}, err
			}
			return DetailRow{
				ServerName:     r.str("serverName"),
				ServiceName:    r.str("serviceName"),
				ResultStatusID: id,
				Remarks:        r.str("remarks"),
			}, nil
		}),
	})
	RegisterComponent(ComponentDefinition{
		Name:  CompNetworkSwitchHealth,
		Label: "Network Switch Health",
		Normalize: listNormalizer("switches", func(r rawRow, refs *ReferenceSet) (DetailRow, error) {
			id, err := resolveStatus(refs.ResultStatuses, "result", r.str("result"))
			if err != nil {
				return DetailRow{}, err
			}
			return DetailRow{
				MachineName:    r.str("machineName"),
				ResultStatusID: id,
				Remarks:        r.str("remarks"),
			}, nil
		}),
	})
	RegisterComponent(ComponentDefinition{
		Name:  CompCCTVCamera,
		Label: "CCTV Camera Check",
		Normalize: listNormalizer("cameras", func(r rawRow, refs *ReferenceSet) (DetailRow, error) {
			id, err := resolveStatus(refs.YesNoStatuses, "done", r.str("done"))
			if err != nil {
				return DetailRow{}, err
			}
			return DetailRow{
				MachineName:   r.str("machineName"),
				YesNoStatusID: id,
				Remarks:       r.str("remarks"),
			}, nil
		}),
	})

	RegisterComponent(ComponentDefinition{
		Name:      CompASAFirewall,
		Label:     "ASA Firewall Check",
		Normalize: normalizeASAFirewall,
	})
	RegisterComponent(ComponentDefinition{
		Name:      CompAutoFailover,
		Label:     "Auto Failover Test",
		Normalize: normalizeAutoFailover,
	})
	RegisterComponent(ComponentDefinition{
		Name:      CompDiskUsage,
		Label:     "Disk Usage",
		Normalize: normalizeDiskUsage,
	})
	RegisterComponent(ComponentDefinition{
		Name:      CompCPUAndRAMUsage,
		Label:     "CPU and RAM Usage",
		Normalize: normalizeCPUAndRAM,
	})
	RegisterComponent(ComponentDefinition{
		Name:      CompDatabaseBackup,
		Label:     "Database Backup",
		Normalize: normalizeDatabaseBackup,
	})
	RegisterComponent(ComponentDefinition{
		Name:      CompMonthlyDatabase,
		Label:     "Monthly Database Creation",
		Normalize: normalizeMonthlyDatabase,
	})
}

// normalizeASAFirewall handles the firewall command table. The UI ships the
// two canned commands preloaded; rows that still equal that template with no
// completion ids and no remarks mean the section was never touched.
// expectedResultId renames to ASAFirewallStatusID and doneId to
// ResultStatusID.
func normalizeASAFirewall(raw json.RawMessage, refs *ReferenceSet) (*ComponentRecord, error) {
	remarks, rows, err := decodeList(raw, "commands")
	if err != nil {
		return nil, err
	}

	details, err := buildDetails(rows, refs, func(r rawRow, refs *ReferenceSet) (DetailRow, error) {
		expected, err := resolveStatus(refs.ASAStatuses, "expectedResultId", r.str("expectedResultId"))
		if err != nil {
			return DetailRow{}, err
		}
		done, err := resolveStatus(refs.ResultStatuses, "doneId", r.str("doneId"))
		if err != nil {
			return DetailRow{}, err
		}
		return DetailRow{
			Command:             r.str("command"),
			ASAFirewallStatusID: expected,
			ResultStatusID:      done,
			Remarks:             r.str("remarks"),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	if remarks == "" && asaIsDefault(details) {
		return nil, nil
	}
	if remarks == "" && len(details) == 0 {
		return nil, nil
	}
	return &ComponentRecord{Remarks: remarks, Details: details}, nil
}

// asaIsDefault reports whether the rows are exactly the shipped command pair
// with nothing filled in.
func asaIsDefault(details []DetailRow) bool {
	if len(details) != len(asaFirewallDefaultCommands) {
		return false
	}
	for i, d := range details {
		if d.Command != asaFirewallDefaultCommands[i] {
			return false
		}
		if d.ASAFirewallStatusID != "" || d.ResultStatusID != "" || d.Remarks != "" {
			return false
		}
	}
	return true
}

// normalizeAutoFailover handles the failover test table. The UI preloads the
// canned server pair; a row still equal to that pair with no result and no
// remarks is unedited.
func normalizeAutoFailover(raw json.RawMessage, refs *ReferenceSet) (*ComponentRecord, error) {
	remarks, rows, err := decodeList(raw, "pairs")
	if err != nil {
		return nil, err
	}

	details, err := buildDetails(rows, refs, func(r rawRow, refs *ReferenceSet) (DetailRow, error) {
		id, err := resolveStatus(refs.ResultStatuses, "result", r.str("result"))
		if err != nil {
			return DetailRow{}, err
		}
		return DetailRow{
			SourceServer:      r.str("sourceServer"),
			DestinationServer: r.str("destinationServer"),
			ResultStatusID:    id,
			Remarks:           r.str("remarks"),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	if remarks == "" && autoFailoverIsDefault(details) {
		return nil, nil
	}
	if remarks == "" && len(details) == 0 {
		return nil, nil
	}
	return &ComponentRecord{Remarks: remarks, Details: details}, nil
}

func autoFailoverIsDefault(details []DetailRow) bool {
	if len(details) != 1 {
		return false
	}
	d := details[0]
	return d.SourceServer == autoFailoverDefaultPair.SourceServer &&
		d.DestinationServer == autoFailoverDefaultPair.DestinationServer &&
		d.ResultStatusID == "" && d.Remarks == ""
}

// normalizeDiskUsage flattens the per-server per-disk structure into one
// detail list carrying the owning server name on every row. A disk status
// given as a display name resolves to its id via the disk-status options.
func normalizeDiskUsage(raw json.RawMessage, refs *ReferenceSet) (*ComponentRecord, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var servers []struct {
		ServerName string   `json:"serverName"`
		Disks      []rawRow `json:"disks"`
	}
	remarks := ""
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &servers); err != nil {
			return nil, fmt.Errorf("decode disk usage: %w", err)
		}
	} else {
		var obj struct {
			Remarks string          `json:"remarks"`
			Servers json.RawMessage `json:"servers"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return nil, fmt.Errorf("decode disk usage: %w", err)
		}
		remarks = strings.TrimSpace(obj.Remarks)
		if len(obj.Servers) > 0 {
			if err := json.Unmarshal(obj.Servers, &servers); err != nil {
				return nil, fmt.Errorf("decode disk usage servers: %w", err)
			}
		}
	}

	var details []DetailRow
	for _, srv := range servers {
		serverName := strings.TrimSpace(srv.ServerName)
		for _, disk := range srv.Disks {
			id, err := resolveStatus(refs.DiskStatuses, "status", disk.str("status"))
			if err != nil {
				return nil, err
			}
			d := DetailRow{
				ServerName:      serverName,
				DiskName:        disk.str("diskName"),
				Capacity:        disk.str("capacity"),
				FreeSpace:       disk.str("freeSpace"),
				UsagePercentage: disk.str("usagePercentage"),
				DiskStatusID:    id,
				Remarks:         disk.str("remarks"),
			}
			if !d.HasContent() {
				continue
			}
			details = append(details, d)
		}
	}
	renumber(details)

	if remarks == "" && len(details) == 0 {
		return nil, nil
	}
	return &ComponentRecord{Remarks: remarks, Details: details}, nil
}

// normalizeCPUAndRAM produces two named lists, memory and CPU. A usage row
// is included only when its status resolves to a reference id; rows with a
// blank or unknown status are dropped from the list rather than submitted
// with a null status.
func normalizeCPUAndRAM(raw json.RawMessage, refs *ReferenceSet) (*ComponentRecord, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var obj struct {
		Remarks string `json:"remarks"`
	}
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, fmt.Errorf("decode cpu/ram usage: %w", err)
	}
	remarks := strings.TrimSpace(obj.Remarks)

	lists := make(map[string][]DetailRow)
	for rawKey, listKey := range map[string]string{
		"memoryUsage": ListMemoryUsage,
		"cpuUsage":    ListCPUUsage,
	} {
		rows, err := listField(trimmed, rawKey)
		if err != nil {
			return nil, err
		}
		var details []DetailRow
		for _, r := range rows {
			id, ok := ResolveID(refs.ResultStatuses, r.str("result"))
			if !ok || id == "" {
				continue
			}
			details = append(details, DetailRow{
				ServerName:      r.str("serverName"),
				UsagePercentage: r.str("usagePercentage"),
				ResultStatusID:  id,
				Remarks:         r.str("remarks"),
			})
		}
		renumber(details)
		if len(details) > 0 {
			lists[listKey] = details
		}
	}

	if remarks == "" && len(lists) == 0 {
		return nil, nil
	}
	return &ComponentRecord{Remarks: remarks, Lists: lists}, nil
}

// normalizeDatabaseBackup produces the separate MSSQL and SCADA backup
// lists.
func normalizeDatabaseBackup(raw json.RawMessage, refs *ReferenceSet) (*ComponentRecord, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var obj struct {
		Remarks string `json:"remarks"`
	}
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, fmt.Errorf("decode database backup: %w", err)
	}
	remarks := strings.TrimSpace(obj.Remarks)

	build := func(r rawRow, refs *ReferenceSet) (DetailRow, error) {
		id, err := resolveStatus(refs.YesNoStatuses, "done", r.str("done"))
		if err != nil {
			return DetailRow{}, err
		}
		return DetailRow{
			ServerName:    r.str("serverName"),
			DatabaseName:  r.str("databaseName"),
			BackupDate:    r.str("backupDate"),
			YesNoStatusID: id,
			Remarks:       r.str("remarks"),
		}, nil
	}

	lists := make(map[string][]DetailRow)
	for _, key := range []string{ListMSSQL, ListSCADA} {
		rows, err := listField(trimmed, key)
		if err != nil {
			return nil, err
		}
		details, err := buildDetails(rows, refs, build)
		if err != nil {
			return nil, err
		}
		if len(details) > 0 {
			lists[key] = details
		}
	}

	if remarks == "" && len(lists) == 0 {
		return nil, nil
	}
	return &ComponentRecord{Remarks: remarks, Lists: lists}, nil
}

// normalizeMonthlyDatabase extracts the monthly-database list.
func normalizeMonthlyDatabase(raw json.RawMessage, refs *ReferenceSet) (*ComponentRecord, error) {
	return listNormalizer("monthlyDatabases", func(r rawRow, refs *ReferenceSet) (DetailRow, error) {
		id, err := resolveStatus(refs.YesNoStatuses, "done", r.str("done"))
		if err != nil {
			return DetailRow{}, err
		}
		return DetailRow{
			DatabaseName:  r.str("databaseName"),
			Month:         r.str("month"),
			YesNoStatusID: id,
			Remarks:       r.str("remarks"),
		}, nil
	})(raw, refs)
}
