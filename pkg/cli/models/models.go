/* Copyright 2025 Dnote Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package models defines the records managed by the field client
package models

import (
	"github.com/kropland/kropland/pkg/cli/database"
)

// DateLayout is the layout of calendar dates held in records
const DateLayout = "2006-01-02"

// Entity is a record type held in one of the store collections. Methods are
// called on the zero value.
type Entity interface {
	// CollectionName is the store collection holding the records
	CollectionName() string
	// CreatedField is the JSON field set to the creation date
	CreatedField() string
}

// Cliente tipos
const (
	TipoClienteActivo    = "Activo"
	TipoClientePotencial = "Potencial"
)

// Cliente is a customer of the consultancy
type Cliente struct {
	ID                string `json:"id"`
	Nombre            string `json:"nombre"`
	Apellidos         string `json:"apellidos,omitempty"`
	TipoCliente       string `json:"tipoCliente,omitempty"`
	DNI               string `json:"dni"`
	Telefono          string `json:"telefono"`
	Email             string `json:"email"`
	Poblacion         string `json:"poblacion"`
	Provincia         string `json:"provincia"`
	ComunidadAutonoma string `json:"comunidadAutonoma"`
	CodigoPostal      string `json:"codigoPostal,omitempty"`
	Direccion         string `json:"direccion,omitempty"`
	Notas             string `json:"notas,omitempty"`
	TecnicoAsignado   string `json:"tecnicoAsignado,omitempty"`
	FechaAlta         string `json:"fechaAlta"`
	Activo            bool   `json:"activo"`
	Tipo              string `json:"tipo"`
}

// CollectionName implements Entity
func (Cliente) CollectionName() string { return database.CollectionClientes }

// CreatedField implements Entity
func (Cliente) CreatedField() string { return "fechaAlta" }

// Ubicacion is the address and coordinates of a farm
type Ubicacion struct {
	Direccion string   `json:"direccion,omitempty"`
	Latitud   *float64 `json:"latitud,omitempty"`
	Longitud  *float64 `json:"longitud,omitempty"`
}

// Finca riego
const (
	RiegoRegadio = "Regadío"
	RiegoSecano  = "Secano"
)

// Finca is a farm owned by a Cliente
type Finca struct {
	ID                string    `json:"id"`
	ClienteID         string    `json:"clienteId"`
	Nombre            string    `json:"nombre"`
	Cultivo           string    `json:"cultivo"`
	Variedad          string    `json:"variedad"`
	Portainjerto      string    `json:"portainjerto,omitempty"`
	Superficie        float64   `json:"superficie"`
	VolumenCaldoPorHa float64   `json:"volumenCaldoPorHa,omitempty"`
	AnoPlantacion     int       `json:"añoPlantacion,omitempty"`
	TipoRiego         string    `json:"tipoRiego"`
	Ubicacion         Ubicacion `json:"ubicacion"`
	Notas             string    `json:"notas,omitempty"`
	FechaCreacion     string    `json:"fechaCreacion"`
	Activa            bool      `json:"activa"`
	TecnicoAsignado   string    `json:"tecnicoAsignado,omitempty"`
}

// CollectionName implements Entity
func (Finca) CollectionName() string { return database.CollectionFincas }

// CreatedField implements Entity
func (Finca) CreatedField() string { return "fechaCreacion" }

// Visita estados
const (
	EstadoPendiente  = "Pendiente"
	EstadoConfirmada = "Confirmada"
	EstadoRealizada  = "Realizada"
	EstadoCancelada  = "Cancelada"
)

// Coordenadas is a GPS position
type Coordenadas struct {
	Latitud  float64 `json:"latitud"`
	Longitud float64 `json:"longitud"`
}

// Clima is the weather observed during a visit
type Clima struct {
	Temperatura *float64 `json:"temperatura,omitempty"`
	Humedad     *float64 `json:"humedad,omitempty"`
	Viento      string   `json:"viento,omitempty"`
}

// Tarea is a follow-up task raised during a visit
type Tarea struct {
	ID              string  `json:"id"`
	Descripcion     string  `json:"descripcion"`
	Tipo            string  `json:"tipo"`
	Costo           float64 `json:"costo,omitempty"`
	FechaLimite     string  `json:"fechaLimite,omitempty"`
	Completada      bool    `json:"completada"`
	FechaCompletada string  `json:"fechaCompletada,omitempty"`
}

// Visita is a technical visit to a Finca
type Visita struct {
	ID               string       `json:"id"`
	ClienteID        string       `json:"clienteId"`
	FincaID          string       `json:"fincaId"`
	TecnicoID        string       `json:"tecnicoId"`
	Fecha            string       `json:"fecha"`
	Estado           string       `json:"estado"`
	Notas            string       `json:"notas,omitempty"`
	Imagenes         []string     `json:"imagenes,omitempty"`
	Videos           []string     `json:"videos,omitempty"`
	TareasPendientes []Tarea      `json:"tareasPendientes,omitempty"`
	DuracionEstimada int          `json:"duracionEstimada,omitempty"`
	HoraInicio       string       `json:"horaInicio,omitempty"`
	HoraFin          string       `json:"horaFin,omitempty"`
	UbicacionGPS     *Coordenadas `json:"ubicacionGPS,omitempty"`
	Clima            *Clima       `json:"clima,omitempty"`
	FechaCreacion    string       `json:"fechaCreacion"`
}

// CollectionName implements Entity
func (Visita) CollectionName() string { return database.CollectionVisitas }

// CreatedField implements Entity
func (Visita) CreatedField() string { return "fechaCreacion" }

// ProductoAplicado is a product applied during an Actividad
type ProductoAplicado struct {
	Nombre         string `json:"nombre"`
	Dosis          string `json:"dosis"`
	Unidad         string `json:"unidad"`
	PlazoSeguridad int    `json:"plazoSeguridad,omitempty"`
	Tipo           string `json:"tipo"`
}

// Actividad estados
const (
	ActividadPlanificada = "Planificada"
	ActividadEnProceso   = "En Proceso"
	ActividadCompletada  = "Completada"
	ActividadCancelada   = "Cancelada"
)

// Actividad is work carried out on a Finca
type Actividad struct {
	ID            string             `json:"id"`
	FincaID       string             `json:"fincaId"`
	Tipo          string             `json:"tipo"`
	Descripcion   string             `json:"descripcion"`
	Fecha         string             `json:"fecha"`
	CostoTotal    float64            `json:"costoTotal"`
	CostoPorHa    float64            `json:"costoPorHa,omitempty"`
	Responsable   string             `json:"responsable,omitempty"`
	Notas         string             `json:"notas,omitempty"`
	Productos     []ProductoAplicado `json:"productos,omitempty"`
	Estado        string             `json:"estado"`
	FechaCreacion string             `json:"fechaCreacion"`
}

// CollectionName implements Entity
func (Actividad) CollectionName() string { return database.CollectionActividades }

// CreatedField implements Entity
func (Actividad) CreatedField() string { return "fechaCreacion" }
