package component

import "github.com/milk9111/overworld/sensor"

type Sensor struct {
	Volume *sensor.Volume
}

var SensorComponent = NewComponent[Sensor]()
