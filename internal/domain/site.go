package domain

import (
	"strings"
	"time"
)

// Site is a WAN/SD-WAN site record with up to three carrier circuits
// (EL, ILevant, Horizon). Location, device name, SD-WAN id and LAN IP are
// mandatory; every carrier field is optional independently.
type Site struct {
	ID           int64  `json:"id,string" form:"id" gorm:"primaryKey;autoIncrement"`
	SiteLocation string `json:"site_location" form:"site_location" gorm:"size:120;not null"` // Site location name
	DeviceName   string `json:"device_name" form:"device_name" gorm:"size:120;not null"`     // Edge device name
	SdwanSiteId  string `json:"sdwan_site_id" form:"sdwan_site_id" gorm:"size:120;not null"` // SD-WAN overlay site ID
	LanIp        string `json:"lan_ip" form:"lan_ip" gorm:"size:45;not null"`                // Site LAN IP

	ElIspInfoDetails string `json:"el_isp_info_details" form:"el_isp_details" gorm:"size:255"`
	ElIspCapacity    string `json:"el_isp_capacity" form:"el_capacity" gorm:"size:50"`
	ElIspL2Ip        string `json:"el_isp_l2_ip" form:"el_l2_ip" gorm:"size:45"`

	IlevantIspInfoDetails string `json:"ilevant_isp_info_details" form:"ilevant_isp_details" gorm:"size:255"`
	IlevantIspCapacity    string `json:"ilevant_isp_capacity" form:"ilevant_capacity" gorm:"size:50"`

	AtmPort string `json:"atm_port" form:"atm_port" gorm:"size:100"`

	HorizonIspInfoDetails string `json:"horizon_isp_info_details" form:"horizon_isp_details" gorm:"size:255"`
	HorizonIspCapacity    string `json:"horizon_isp_capacity" form:"horizon_capacity" gorm:"size:50"`
	HorizonIspL2Ip        string `json:"horizon_isp_l2_ip" form:"horizon_l2_ip" gorm:"size:45"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Site) TableName() string {
	return "net_site"
}

// FormatCapacity normalizes a carrier capacity for display: a non-empty value
// without an "mbps" suffix (any case) gets " Mbps" appended; anything else is
// returned trimmed. The stored value is never changed.
func FormatCapacity(v string) string {
	t := strings.TrimSpace(v)
	if t == "" {
		return ""
	}
	if strings.HasSuffix(strings.ToLower(t), "mbps") {
		return t
	}
	return t + " Mbps"
}

func (s Site) ElCapacityMbps() string {
	return FormatCapacity(s.ElIspCapacity)
}

func (s Site) IlevantCapacityMbps() string {
	return FormatCapacity(s.IlevantIspCapacity)
}

func (s Site) HorizonCapacityMbps() string {
	return FormatCapacity(s.HorizonIspCapacity)
}
