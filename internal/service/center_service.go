package service

import (
	"strings"
	"time"

	"github.com/cangchu-next/internal/constants"
	"github.com/cangchu-next/internal/logger"
	"github.com/cangchu-next/internal/models"
	"github.com/cangchu-next/internal/repository"
)

// CenterService 履约中心注册服务
type CenterService struct {
	centerRepo repository.CenterRepository
	orderRepo  repository.OrderRepository
}

// NewCenterService 创建履约中心服务
func NewCenterService(centerRepo repository.CenterRepository, orderRepo repository.OrderRepository) *CenterService {
	return &CenterService{
		centerRepo: centerRepo,
		orderRepo:  orderRepo,
	}
}

// CreateCenterInput 创建履约中心输入
type CreateCenterInput struct {
	Code                string
	Name                string
	Type                string
	Street              string
	City                string
	Region              string
	PostalCode          string
	Country             string
	Latitude            *float64
	Longitude           *float64
	TotalCapacityCubicM float64
	TotalStorageUnits   int
	Capabilities        []string
	ServiceAreas        models.JSON
	OperatingHours      models.JSON
	ContactPhone        string
	ManagerName         string
}

// Create 创建履约中心
func (s *CenterService) Create(input CreateCenterInput) (*models.FulfillmentCenter, error) {
	code := strings.TrimSpace(input.Code)
	name := strings.TrimSpace(input.Name)
	if code == "" || name == "" || strings.TrimSpace(input.Type) == "" {
		return nil, ErrCenterInvalid
	}
	if strings.TrimSpace(input.Street) == "" || strings.TrimSpace(input.City) == "" || strings.TrimSpace(input.Country) == "" {
		return nil, ErrCenterInvalid
	}
	if input.TotalCapacityCubicM <= 0 || input.TotalStorageUnits <= 0 {
		return nil, ErrCenterInvalid
	}
	for _, capability := range input.Capabilities {
		if !isSupportedServiceLevel(capability) {
			return nil, ErrCenterInvalid
		}
	}

	existing, err := s.centerRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrCenterCodeExists
	}

	center := &models.FulfillmentCenter{
		Code:                code,
		Name:                name,
		Type:                strings.TrimSpace(input.Type),
		Street:              strings.TrimSpace(input.Street),
		City:                strings.TrimSpace(input.City),
		Region:              strings.TrimSpace(input.Region),
		PostalCode:          strings.TrimSpace(input.PostalCode),
		Country:             strings.TrimSpace(input.Country),
		Latitude:            input.Latitude,
		Longitude:           input.Longitude,
		TotalCapacityCubicM: input.TotalCapacityCubicM,
		UsedCapacityCubicM:  0,
		TotalStorageUnits:   input.TotalStorageUnits,
		AvailableStorage:    input.TotalStorageUnits,
		Capabilities:        models.StringArray(input.Capabilities),
		ServiceAreasJSON:    input.ServiceAreas,
		OperatingHoursJSON:  input.OperatingHours,
		ContactPhone:        strings.TrimSpace(input.ContactPhone),
		ManagerName:         strings.TrimSpace(input.ManagerName),
		Status:              constants.CenterStatusActive,
		OrderAccuracy:       100,
		OnTimeShipmentRate:  100,
		CapacityUtilization: 0,
	}
	if err := s.centerRepo.Create(center); err != nil {
		return nil, err
	}
	logger.Infow("center_created", "center_id", center.ID, "code", center.Code)
	return center, nil
}

// UpdateCenterInput 更新履约中心输入（nil 字段保持不变）
type UpdateCenterInput struct {
	Name                *string
	Type                *string
	Street              *string
	City                *string
	Region              *string
	PostalCode          *string
	Country             *string
	Latitude            *float64
	Longitude           *float64
	TotalCapacityCubicM *float64
	TotalStorageUnits   *int
	Capabilities        *[]string
	ServiceAreas        *models.JSON
	OperatingHours      *models.JSON
	ContactPhone        *string
	ManagerName         *string
	Status              *string
}

// Update 局部更新履约中心
func (s *CenterService) Update(id uint, input UpdateCenterInput) (*models.FulfillmentCenter, error) {
	center, err := s.centerRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if center == nil {
		return nil, ErrCenterNotFound
	}

	if input.TotalCapacityCubicM != nil {
		if *input.TotalCapacityCubicM <= 0 {
			return nil, ErrCenterInvalid
		}
		if *input.TotalCapacityCubicM < center.UsedCapacityCubicM {
			return nil, ErrCapacityConflict
		}
		center.TotalCapacityCubicM = *input.TotalCapacityCubicM
		center.CapacityUtilization = utilizationPercent(center.UsedCapacityCubicM, center.TotalCapacityCubicM)
	}
	if input.TotalStorageUnits != nil {
		if *input.TotalStorageUnits <= 0 {
			return nil, ErrCenterInvalid
		}
		occupied := center.TotalStorageUnits - center.AvailableStorage
		if *input.TotalStorageUnits < occupied {
			return nil, ErrCapacityConflict
		}
		center.TotalStorageUnits = *input.TotalStorageUnits
		center.AvailableStorage = *input.TotalStorageUnits - occupied
	}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrCenterInvalid
		}
		center.Name = strings.TrimSpace(*input.Name)
	}
	if input.Type != nil {
		center.Type = strings.TrimSpace(*input.Type)
	}
	if input.Street != nil {
		center.Street = strings.TrimSpace(*input.Street)
	}
	if input.City != nil {
		center.City = strings.TrimSpace(*input.City)
	}
	if input.Region != nil {
		center.Region = strings.TrimSpace(*input.Region)
	}
	if input.PostalCode != nil {
		center.PostalCode = strings.TrimSpace(*input.PostalCode)
	}
	if input.Country != nil {
		center.Country = strings.TrimSpace(*input.Country)
	}
	if input.Latitude != nil {
		center.Latitude = input.Latitude
	}
	if input.Longitude != nil {
		center.Longitude = input.Longitude
	}
	if input.Capabilities != nil {
		for _, capability := range *input.Capabilities {
			if !isSupportedServiceLevel(capability) {
				return nil, ErrCenterInvalid
			}
		}
		center.Capabilities = models.StringArray(*input.Capabilities)
	}
	if input.ServiceAreas != nil {
		center.ServiceAreasJSON = *input.ServiceAreas
	}
	if input.OperatingHours != nil {
		center.OperatingHoursJSON = *input.OperatingHours
	}
	if input.ContactPhone != nil {
		center.ContactPhone = strings.TrimSpace(*input.ContactPhone)
	}
	if input.ManagerName != nil {
		center.ManagerName = strings.TrimSpace(*input.ManagerName)
	}
	if input.Status != nil {
		status := strings.TrimSpace(*input.Status)
		if status != constants.CenterStatusActive &&
			status != constants.CenterStatusInactive &&
			status != constants.CenterStatusSuspended {
			return nil, ErrCenterInvalid
		}
		center.Status = status
	}
	center.UpdatedAt = time.Now()

	if err := s.centerRepo.Update(center); err != nil {
		return nil, err
	}
	return center, nil
}

// Get 获取履约中心
func (s *CenterService) Get(id uint) (*models.FulfillmentCenter, error) {
	center, err := s.centerRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if center == nil {
		return nil, ErrCenterNotFound
	}
	return center, nil
}

// List 查询履约中心列表
func (s *CenterService) List(filter repository.CenterListFilter) ([]models.FulfillmentCenter, int64, error) {
	return s.centerRepo.List(filter)
}

// Deactivate 停用履约中心（存在未终结订单时拒绝）
func (s *CenterService) Deactivate(id uint, status string) error {
	if status == "" {
		status = constants.CenterStatusInactive
	}
	if status != constants.CenterStatusInactive && status != constants.CenterStatusSuspended {
		return ErrCenterInvalid
	}
	center, err := s.centerRepo.GetByID(id)
	if err != nil {
		return err
	}
	if center == nil {
		return ErrCenterNotFound
	}

	openCount, err := s.orderRepo.CountOpenByCenter(id)
	if err != nil {
		return err
	}
	if openCount > 0 {
		return ErrCenterHasOpenOrders
	}

	if err := s.centerRepo.UpdateStatus(id, status); err != nil {
		return err
	}
	logger.Infow("center_deactivated", "center_id", id, "status", status)
	return nil
}

func isSupportedServiceLevel(level string) bool {
	for _, supported := range constants.SupportedServiceLevels {
		if supported == level {
			return true
		}
	}
	return false
}

func utilizationPercent(used, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return used / total * 100
}
