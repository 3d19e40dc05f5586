package mqtt

import "testing"

func TestTopics(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"emergency stop", topics.EmergencyStop(), "almacen/parada_emergencia"},
		{"conveyor 1 status", topics.ConveyorStatus(1), "almacen/estado/cinta1"},
		{"conveyor 2 status", topics.ConveyorStatus(2), "almacen/estado/cinta2"},
		{"infrared 1 status", topics.InfraredStatus(1), "almacen/estado/infrarrojo1"},
		{"infrared 2 status", topics.InfraredStatus(2), "almacen/estado/infrarrojo2"},
		{"agv status", topics.AGVStatus(), "almacen/estado/agv"},
		{"qr scan", topics.QRScan(), "almacen/estado/qr"},
		{"directive", topics.Directive(), "almacen/comando/directiva"},
		{"conveyor 1 command", topics.ConveyorCommand(1), "almacen/comando/cinta1"},
		{"palletizer command", topics.PalletizerCommand(), "almacen/comando/paletizador"},
		{"cobot command", topics.CobotCommand(), "almacen/comando/cobot"},
		{"operation event", topics.OperationEvent(), "almacen/evento/operacion"},
		{"system status", topics.SystemStatus(), "almacen/sistema/estado"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestPublish_Validation(t *testing.T) {
	c := &Client{subscriptions: make(map[string]subscription)}

	if err := c.Publish("", []byte("x"), 1, false); err != ErrInvalidTopic {
		t.Errorf("empty topic: err = %v, want ErrInvalidTopic", err)
	}
	if err := c.Publish("almacen/comando/directiva", []byte("x"), 3, false); err != ErrInvalidQoS {
		t.Errorf("bad qos: err = %v, want ErrInvalidQoS", err)
	}
}
